package collector

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// 选择器绑定教务处公告页当前的 DOM 结构，页面改版时需要同步调整
const (
	noticeListSelector  = "ul.n_listxx1 li"
	noticeTitleSelector = "h2 a"
	noticeDateSelector  = "h2 span.time"

	fetchTimeout = 10 * time.Second
)

// JWCFetcher 抓取曲阜师范大学教务处公告列表页
type JWCFetcher struct {
	URL     string
	BaseURL string
}

func NewJWCFetcher(pageURL, baseURL string) *JWCFetcher {
	return &JWCFetcher{URL: pageURL, BaseURL: baseURL}
}

func (f *JWCFetcher) Name() string {
	return "jwc_gg"
}

func (f *JWCFetcher) Fetch() ([]Notice, error) {
	log.Println("fetch JWC announcements...")

	c := colly.NewCollector(
		colly.UserAgent("QFNU-Monitor/1.0"),
	)
	c.SetRequestTimeout(fetchTimeout)

	notices := make([]Notice, 0, 30)

	c.OnHTML(noticeListSelector, func(e *colly.HTMLElement) {
		titleSel := e.DOM.Find(noticeTitleSelector).First()
		title := selectionText(titleSel)
		if title == "" {
			return
		}

		link, _ := titleSel.Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = f.BaseURL + link
		}

		// 日期标签可能缺失，缺失时记为空串
		date := selectionText(e.DOM.Find(noticeDateSelector).First())

		notices = append(notices, Notice{Title: title, Link: link, Date: date})
	})

	if err := c.Visit(f.URL); err != nil {
		return nil, fmt.Errorf("jwc: fetch notice page: %w", err)
	}

	if len(notices) == 0 {
		log.Println("jwc: no notices extracted from page")
	}

	return notices, nil
}

func selectionText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(sel.Text())
}
