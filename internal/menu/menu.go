// Package menu scrapes the weekly dining commons menu.
//
// The menu page lists all meals of the week. Each meal lives in a
// div#<meal>-body with one table; every row has five day columns. Course
// rows (class "course-row") name a station, the other rows hold the dishes
// as a <dl> of <dd> entries.
package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // America/Los_Angeles without a system zoneinfo

	"github.com/PuerkitoBio/goquery"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'menu'
func tracer() tracing.Trace {
	return tracing.Select("menu")
}

// DefaultURL is the week view of the Portola dining commons.
const DefaultURL = "https://apps.dining.ucsb.edu/menu/week?dc=portola&m=breakfast&m=brunch&m=lunch&m=dinner&m=late-night&food="

// Days is the number of day columns of the week view.
const Days = 5

// ErrNoMenu is returned when the page has no section for the meal.
var ErrNoMenu = errors.New("no menu this week")

// Meal selects a section of the week view.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch" // lunch and brunch merged
	Dinner    Meal = "dinner"
)

// Meals in page order.
var Meals = []Meal{Breakfast, Lunch, Dinner}

// ParseMeal accepts the dropdown values.
func ParseMeal(s string) (Meal, error) {
	switch m := Meal(strings.ToLower(strings.TrimSpace(s))); m {
	case Breakfast, Lunch, Dinner:
		return m, nil
	case "":
		return Dinner, nil
	}
	return "", fmt.Errorf("unknown meal %q", s)
}

// Label is the dropdown label.
func (m Meal) Label() string {
	switch m {
	case Lunch:
		return "Lunch/Brunch"
	case Breakfast:
		return "Breakfast"
	}
	return "Dinner"
}

// highlightRows lists the 1-based rows whose first dish is the entrée.
var highlightRows = map[Meal][]int{
	Lunch:  {6, 10, 12, 14},
	Dinner: {4, 10, 12},
}

// Item is one line of a day column.
type Item struct {
	Text      string
	Course    bool // station heading
	Highlight bool // entrée
}

// Week holds the items of each day column.
type Week [Days][]Item

// Parse extracts the section of meal from a week page.
func Parse(r io.Reader, meal Meal) (*Week, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing menu page: %w", err)
	}
	return parseDocument(doc, meal)
}

type section struct {
	id        string
	highlight []int
}

func parseDocument(doc *goquery.Document, meal Meal) (*Week, error) {
	var week Week
	sections := []section{{string(meal), highlightRows[meal]}}
	if meal == Lunch {
		sections = append(sections, section{"brunch", nil})
	}
	found := false
	for _, s := range sections {
		sel := doc.Find("div#" + s.id + "-body").First()
		if sel.Length() == 0 {
			continue
		}
		found = true
		part := parseBody(sel.Find("tbody").First(), s.highlight)
		for d := range week {
			week[d] = append(week[d], part[d]...)
		}
	}
	if !found {
		return nil, fmt.Errorf("%w (%s)", ErrNoMenu, meal)
	}
	return &week, nil
}

func parseBody(tbody *goquery.Selection, highlight []int) Week {
	var week Week
	tbody.Find("tr").Each(func(row int, tr *goquery.Selection) {
		course := tr.HasClass("course-row")
		entree := contains(highlight, row+1)
		tr.Find("td").EachWithBreak(func(day int, td *goquery.Selection) bool {
			if day >= Days {
				return false
			}
			if course {
				week[day] = append(week[day], Item{Text: clean(td.Text()), Course: true})
				return true
			}
			td.Find("dl").First().Find("dd").Each(func(idx int, dd *goquery.Selection) {
				week[day] = append(week[day], Item{Text: clean(dd.Text()), Highlight: entree && idx == 0})
			})
			return true
		})
	})
	return week
}

func contains(rows []int, r int) bool {
	for _, x := range rows {
		if x == r {
			return true
		}
	}
	return false
}

// clean drops the vegetarian and vegan markers and collapses white space.
func clean(s string) string {
	s = strings.NewReplacer("(vgn)", "", "(v)", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// --- Client -----------------------------------------------------------------

// DefaultTTL is how long a fetched page is reused.
const DefaultTTL = 60 * time.Second

// Client fetches and caches the week page. It is safe for concurrent use.
type Client struct {
	URL  string
	HTTP *http.Client
	TTL  time.Duration
	Now  func() time.Time

	mu      sync.Mutex
	doc     *goquery.Document
	fetched time.Time
}

// NewClient returns a client for url with the default cache lifetime.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		URL:  url,
		HTTP: &http.Client{Timeout: 20 * time.Second},
		TTL:  DefaultTTL,
		Now:  time.Now,
	}
}

func (c *Client) document(ctx context.Context) (*goquery.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Now()
	if c.doc != nil && now.Sub(c.fetched) < c.TTL {
		return c.doc, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching menu: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching menu: %s", resp.Status)
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing menu page: %w", err)
	}
	tracer().Infof("menu page fetched from %s", c.URL)
	c.doc, c.fetched = doc, now
	return doc, nil
}

// Day is one column of the rendered menu.
type Day struct {
	Title string
	Items []Item
}

// Menu is a meal of the week, ready for display.
type Menu struct {
	Meal  Meal
	Title string
	Days  []Day
}

// Menu fetches (or reuses) the page and returns meal for the five days
// starting today in Santa Barbara.
func (c *Client) Menu(ctx context.Context, meal Meal) (*Menu, error) {
	doc, err := c.document(ctx)
	if err != nil {
		return nil, err
	}
	week, err := parseDocument(doc, meal)
	if err != nil {
		return nil, err
	}
	return layout(meal, week, c.Now()), nil
}

func layout(meal Meal, week *Week, now time.Time) *Menu {
	if loc, err := time.LoadLocation("America/Los_Angeles"); err == nil {
		now = now.In(loc)
	}
	last := now.AddDate(0, 0, Days-1)
	m := &Menu{
		Meal: meal,
		Title: fmt.Sprintf("Portola Dining %s Menu from %s to %s",
			strings.ToUpper(string(meal[:1]))+string(meal[1:]), now.Format("01/02"), last.Format("01/02")),
	}
	for d, items := range week {
		m.Days = append(m.Days, Day{
			Title: now.AddDate(0, 0, d).Format("Monday, 01/02"),
			Items: items,
		})
	}
	return m
}
