package collector

// Notice 教务处公告的统一结构，与落盘的 JSON 记录一一对应
type Notice struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

// Fetcher 抽象一个公告来源
type Fetcher interface {
	Name() string
	Fetch() ([]Notice, error)
}
