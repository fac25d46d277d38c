package menu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// weekPage builds a page with a dinner section of rows rows and a brunch
// section; row 1 is a course row.
func weekPage(rows int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="dinner-body"><table><tbody>`)
	for r := 1; r <= rows; r++ {
		if r == 1 {
			b.WriteString(`<tr class="text-center course-row">`)
			for d := 0; d < 6; d++ {
				b.WriteString(`<td> Entrees  (v) </td>`)
			}
			b.WriteString(`</tr>`)
			continue
		}
		b.WriteString(`<tr>`)
		for d := 0; d < 5; d++ {
			fmt.Fprintf(&b, `<td><dl><dd>Dish %d-%d (vgn)</dd><dd>Side %d-%d</dd></dl></td>`, r, d, r, d)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table></div>`)
	b.WriteString(`<div id="brunch-body"><table><tbody><tr>`)
	for d := 0; d < 5; d++ {
		fmt.Fprintf(&b, `<td><dl><dd>Waffles %d</dd></dl></td>`, d)
	}
	b.WriteString(`</tr><tr><td><dl><dd>Omelette</dd></dl></td></tr><tr><td><dl><dd>Hash</dd></dl></td></tr><tr><td><dl><dd>Toast</dd></dl></td></tr>`)
	b.WriteString(`<tr><td><dl><dd>Fruit</dd></dl></td></tr><tr><td><dl><dd>Bagel</dd></dl></td></tr></tbody></table></div>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestParseDinner(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	week, err := Parse(strings.NewReader(weekPage(12)), Dinner)
	require.NoError(t, err)
	for d := 0; d < Days; d++ {
		items := week[d]
		// one course row plus 11 rows of two dishes
		require.Len(t, items, 1+2*11)
		assert.Equal(t, Item{Text: "Entrees", Course: true}, items[0])
	}
	day := week[2]
	// row 4 is the third dish row: items 1,2 = row 2, 3,4 = row 3, 5,6 = row 4
	assert.Equal(t, Item{Text: "Dish 4-2", Highlight: true}, day[5])
	assert.Equal(t, Item{Text: "Side 4-2"}, day[6])
	assert.False(t, day[7].Highlight)     // row 5
	assert.True(t, day[1+2*8].Highlight)  // row 10
	assert.True(t, day[1+2*10].Highlight) // row 12
}

func TestParseLunchMergesBrunch(t *testing.T) {
	week, err := Parse(strings.NewReader(weekPage(3)), Lunch)
	require.NoError(t, err)
	// no lunch section: brunch only, never highlighted
	assert.Equal(t, []Item{{Text: "Waffles 0"}, {Text: "Omelette"}, {Text: "Hash"}, {Text: "Toast"}, {Text: "Fruit"}, {Text: "Bagel"}}, week[0])
	assert.Equal(t, []Item{{Text: "Waffles 4"}}, week[4])
}

func TestParseNoMenu(t *testing.T) {
	_, err := Parse(strings.NewReader(weekPage(3)), Breakfast)
	assert.True(t, errors.Is(err, ErrNoMenu))
}

func TestClientCachesPage(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		fmt.Fprint(w, weekPage(4))
	}))
	defer srv.Close()

	now := time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC) // 12:00 in Santa Barbara
	c := NewClient(srv.URL)
	c.Now = func() time.Time { return now }

	m, err := c.Menu(context.Background(), Dinner)
	require.NoError(t, err)
	assert.Equal(t, "Portola Dining Dinner Menu from 03/04 to 03/08", m.Title)
	require.Len(t, m.Days, Days)
	assert.Equal(t, "Monday, 03/04", m.Days[0].Title)
	assert.Equal(t, "Friday, 03/08", m.Days[4].Title)

	_, err = c.Menu(context.Background(), Lunch)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(DefaultTTL + time.Second)
	_, err = c.Menu(context.Background(), Dinner)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()
	_, err := NewClient(srv.URL).Menu(context.Background(), Dinner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseMeal(t *testing.T) {
	m, err := ParseMeal("Lunch")
	require.NoError(t, err)
	assert.Equal(t, Lunch, m)
	assert.Equal(t, "Lunch/Brunch", m.Label())
	m, err = ParseMeal("")
	require.NoError(t, err)
	assert.Equal(t, Dinner, m)
	_, err = ParseMeal("supper")
	assert.Error(t, err)
}
