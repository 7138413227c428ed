package kijiji

import (
	"context"
	"strings"
	"testing"

	"rental-aggregator/feed"
	"rental-aggregator/utils"
)

type fakeSource struct {
	docs   map[string]string
	urls   []string
	labels []string
}

func (f *fakeSource) Fetch(_ context.Context, url, label string) string {
	f.urls = append(f.urls, url)
	f.labels = append(f.labels, label)
	for keyword, doc := range f.docs {
		if strings.Contains(url, "keywords="+keyword) {
			return doc
		}
	}
	return ""
}

const markhamFeed = `<rss><channel>
<item><title>1+Den Markham</title><link>https://www.kijiji.ca/v-1</link>
<description>&lt;p&gt;$1,850 per month, underground parking&lt;/p&gt;</description>
<pubDate>Mon, 06 Jan 2025 10:00:00 +0000</pubDate>
<enclosure url="https://img.kijiji.ca/1.jpg" type="image/jpeg"/></item>
<item><title>$1,700 Studio</title><link>https://www.kijiji.ca/v-2</link>
<description>Cozy unit</description></item>
</channel></rss>`

func TestRunFansOutPerRegion(t *testing.T) {
	src := &fakeSource{docs: map[string]string{"Markham": markhamFeed}}
	s := NewWithBaseURL("https://feeds.test/kijiji", src, feed.NewRegexParser(), utils.Discard())

	got, err := s.Run(context.Background(), 1900, []string{"Markham", "North York"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(src.urls) != 2 {
		t.Fatalf("expected one fetch per region, got %d", len(src.urls))
	}
	if src.urls[1] != "https://feeds.test/kijiji?ad=offering&price=0__1900&keywords=North+York" {
		t.Errorf("query url = %q", src.urls[1])
	}
	if src.labels[0] != "kijiji:Markham" {
		t.Errorf("label = %q", src.labels[0])
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	first := got[0]
	if first["city"] != "Markham" || first["neighborhood"] != "Markham" {
		t.Errorf("region tag missing: %v", first)
	}
	if first["price"] != 1850 || first["parking"] != true {
		t.Errorf("derived fields wrong: price=%v parking=%v", first["price"], first["parking"])
	}
	if first["date_found"] != "Mon, 06 Jan 2025 10:00:00 +0000" {
		t.Errorf("date_found = %v", first["date_found"])
	}
	if got[1]["price"] != 1700 {
		t.Errorf("title price fallback: %v", got[1]["price"])
	}
}

func TestRunEmptyFeedYieldsNothing(t *testing.T) {
	s := NewWithBaseURL("https://feeds.test/kijiji", &fakeSource{}, feed.NewRegexParser(), utils.Discard())
	got, err := s.Run(context.Background(), 1900, []string{"Vaughan"})
	if err != nil || len(got) != 0 {
		t.Errorf("got %d candidates, err %v", len(got), err)
	}
}

func TestRunStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{}
	s := New(src, feed.NewRegexParser(), utils.Discard())
	if _, err := s.Run(ctx, 1900, []string{"Markham"}); err == nil {
		t.Error("expected context error")
	}
	if len(src.urls) != 0 {
		t.Errorf("no fetch expected after cancel, got %d", len(src.urls))
	}
}
