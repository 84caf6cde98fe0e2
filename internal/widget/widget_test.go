package widget

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"swapboard/internal/explorer"
	"swapboard/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type staticRates map[string]decimal.Decimal

func (r staticRates) Rate(symbol string) (decimal.Decimal, bool) {
	v, ok := r[symbol]
	return v, ok
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	linker, err := explorer.NewLinker("")
	require.NoError(t, err)
	r, err := NewRenderer(linker, nil)
	require.NoError(t, err)
	return r
}

func makeTrades(n int) []model.SwapEvent {
	out := make([]model.SwapEvent, n)
	for i := range out {
		out[i] = model.SwapEvent{
			TransactionHash:      fmt.Sprintf("0xhash%d", i),
			MakerToken:           "0x6b175474e89094c44da98b954eedeac495271d0f",
			TakerToken:           "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
			MakerSymbol:          "DAI",
			TakerSymbol:          "WETH",
			MakerAmountFormatted: "1234.567891234",
			TakerAmountFormatted: "0.5",
			EthAmount:            0.5,
			Timestamp:            testNow.Add(-3 * time.Minute).Unix(),
		}
	}
	return out
}

func render(t *testing.T, r *Renderer, v Variant, p Props) string {
	t.Helper()
	list, err := r.List(v)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, list.Render(&buf, p))
	return buf.String()
}

func rowCount(html string) int {
	return strings.Count(html, `class="swap-list-item"`)
}

func TestLoadingPlaceholder(t *testing.T) {
	r := newTestRenderer(t)
	for _, v := range Variants {
		for _, trades := range [][]model.SwapEvent{nil, {}} {
			html := render(t, r, v, Props{Trades: trades, Now: testNow, Instance: "abc"})
			assert.Contains(t, html, `data-loading="true"`, "variant %s", v)
			assert.Equal(t, 0, rowCount(html), "variant %s", v)
			assert.NotContains(t, html, "swap-list-header")
		}
	}
}

func TestFullListRowCount(t *testing.T) {
	r := newTestRenderer(t)
	for _, n := range []int{1, 3, 10} {
		html := render(t, r, Full, Props{Trades: makeTrades(n), Now: testNow, Height: n * RowHeight})
		assert.Equal(t, n, rowCount(html))
		assert.Contains(t, html, fmt.Sprintf(`data-row-count="%d"`, n))
	}
}

func TestFullListVirtualizes(t *testing.T) {
	r := newTestRenderer(t)
	full := fullList{r: r}

	view := full.View(Props{Trades: makeTrades(1000), Now: testNow})
	assert.Equal(t, 1000, view.Window.Count)
	assert.Equal(t, 1000*RowHeight, view.Window.TotalHeight)
	assert.Len(t, view.Rows, view.Window.Len())
	assert.Less(t, len(view.Rows), 20)

	view = full.View(Props{Trades: makeTrades(1000), Now: testNow, Offset: 600, Height: 300})
	require.NotEmpty(t, view.Rows)
	assert.Equal(t, 9, view.Rows[0].Index)
	assert.Equal(t, 9*RowHeight, view.Rows[0].Top)
	assert.Equal(t, 1000, view.Window.Count)
}

func TestFullListMediumLayout(t *testing.T) {
	r := newTestRenderer(t)
	html := render(t, r, Full, Props{Trades: makeTrades(1), Now: testNow, Rates: staticRates{"ETH": decimal.NewFromInt(2000)}})

	for _, c := range Columns {
		if c.Label != "" {
			assert.Contains(t, html, c.Label)
		}
	}
	assert.Contains(t, html, "1234.567891 DAI")
	assert.Contains(t, html, `<span class="tooltip-content" role="tooltip">1234.567891234 DAI</span>`)
	assert.Contains(t, html, "$1,000.00")
	assert.Contains(t, html, "3m ago")
	assert.Contains(t, html, `href="https://etherscan.io/tx/0xhash0"`)
	assert.Contains(t, html, `target="_blank"`)
	assert.Contains(t, html, `id="swap-list-item-0xhash0"`)
}

func TestFullListSmallLayout(t *testing.T) {
	r := newTestRenderer(t)
	html := render(t, r, Full, Props{Trades: makeTrades(2), Now: testNow, Layout: Small})

	assert.NotContains(t, html, "swap-list-header")
	assert.NotContains(t, html, "tooltip-content")
	assert.Contains(t, html, `data-layout="sm"`)
	assert.Contains(t, html, "0.5 WETH")
	assert.Equal(t, 2, rowCount(html))
}

func TestFullListInvalidAmount(t *testing.T) {
	r := newTestRenderer(t)
	trades := makeTrades(1)
	trades[0].MakerAmountFormatted = "NaN"

	html := render(t, r, Full, Props{Trades: trades, Now: testNow})
	assert.Contains(t, html, `<span class="tooltip-target">– DAI</span>`)
	assert.Contains(t, html, "0.5 WETH")
}

func TestPreviewRowCount(t *testing.T) {
	r := newTestRenderer(t)
	for n, want := range map[int]int{1: 1, 3: 3, 4: 4, 5: 4, 50: 4} {
		html := render(t, r, Preview, Props{Trades: makeTrades(n), Now: testNow, Instance: "abc"})
		assert.Equal(t, want, rowCount(html), "input length %d", n)
	}
}

func TestPreviewExpandControl(t *testing.T) {
	r := newTestRenderer(t)

	html := render(t, r, Preview, Props{Trades: makeTrades(2), Now: testNow, Instance: "abc"})
	assert.Contains(t, html, `action="/widgets/recent-swaps/preview/abc/expand"`)
	assert.Contains(t, html, "View All")
	assert.Contains(t, html, `data-expanded="false"`)
	assert.NotContains(t, html, "expanded-content")

	html = render(t, r, Preview, Props{Trades: makeTrades(2), Now: testNow, Instance: "abc", State: ViewState{Expanded: true}})
	assert.Contains(t, html, `data-expanded="true"`)
	assert.Contains(t, html, `class="expanded-content"`)
	assert.Equal(t, 2, rowCount(html))
}

func TestPreviewExpandControlWithoutInstance(t *testing.T) {
	r := newTestRenderer(t)
	for _, n := range []int{0, 3} {
		html := render(t, r, Preview, Props{Trades: makeTrades(n), Now: testNow})
		assert.Contains(t, html, "View All")
		assert.Contains(t, html, `action="`+MintExpandPath+`"`)
	}
}

func TestPreviewLayouts(t *testing.T) {
	r := newTestRenderer(t)

	html := render(t, r, Preview, Props{Trades: makeTrades(1), Now: testNow, Instance: "abc", Layout: Small})
	assert.NotContains(t, html, "etherscan-icon")
	assert.Contains(t, html, "3m ago")

	html = render(t, r, Preview, Props{Trades: makeTrades(1), Now: testNow, Instance: "abc", Layout: MediumUp})
	assert.Contains(t, html, "etherscan-icon")
	assert.Contains(t, html, "token-pair")
}

func TestFragment(t *testing.T) {
	r := newTestRenderer(t)
	b, err := r.Fragment(Preview, Props{Trades: makeTrades(1), Now: testNow, Instance: "abc"})
	require.NoError(t, err)
	assert.Contains(t, string(b), `data-variant="preview"`)

	_, err = r.Fragment(Variant("grid"), Props{})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("full")
	require.NoError(t, err)
	assert.Equal(t, Full, v)

	v, err = ParseVariant("preview")
	require.NoError(t, err)
	assert.Equal(t, Preview, v)

	_, err = ParseVariant("compact")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestParseLayout(t *testing.T) {
	assert.Equal(t, Small, ParseLayout("sm", ""))
	assert.Equal(t, MediumUp, ParseLayout("md-up", "320"))
	assert.Equal(t, Small, ParseLayout("", "320"))
	assert.Equal(t, MediumUp, ParseLayout("", "768"))
	assert.Equal(t, MediumUp, ParseLayout("", ""))
	assert.Equal(t, MediumUp, ParseLayout("xl", "abc"))
}

func TestVisible(t *testing.T) {
	w := Visible(0, 0, 400)
	assert.Equal(t, 0, w.Len())

	w = Visible(3, 0, 400)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 3, w.End)

	w = Visible(100, 0, 400)
	assert.Equal(t, 0, w.Start)
	assert.Equal(t, 8, w.End)

	// scrolled past the end is clamped to the last page
	w = Visible(100, 1_000_000, 400)
	assert.Equal(t, 100, w.End)
	assert.Equal(t, 92, w.Start)

	w = Visible(100, -50, 0)
	assert.Equal(t, DefaultHeight, w.Height)
	assert.Equal(t, 0, w.Start)
}

func TestInstances(t *testing.T) {
	in := NewInstances(2)

	id := in.New()
	assert.True(t, Valid(id))
	_, ok := in.Get(id)
	assert.False(t, ok, "collapsed widgets are not recorded")
	assert.Equal(t, 0, in.Len())

	got, st := in.Resolve(id)
	assert.Equal(t, id, got)
	assert.False(t, st.Expanded)

	require.NoError(t, in.Expand(id))
	require.NoError(t, in.Expand(id))
	st, ok = in.Get(id)
	require.True(t, ok)
	assert.True(t, st.Expanded)
	assert.Equal(t, 1, in.Len())

	assert.ErrorIs(t, in.Expand("missing"), ErrUnknownInstance)

	got, st = in.Resolve(id)
	assert.Equal(t, id, got)
	assert.True(t, st.Expanded)

	other, st := in.Resolve("missing")
	assert.NotEqual(t, id, other)
	assert.True(t, Valid(other))
	assert.False(t, st.Expanded)
}

func TestInstancesEvictOldestExpanded(t *testing.T) {
	in := NewInstances(2)
	first, second, third := in.New(), in.New(), in.New()
	require.NoError(t, in.Expand(first))
	require.NoError(t, in.Expand(second))
	require.NoError(t, in.Expand(third))

	assert.Equal(t, 2, in.Len())
	_, ok := in.Get(first)
	assert.False(t, ok)
	_, ok = in.Get(third)
	assert.True(t, ok)
}

func TestInstancesResolveDoesNotGrow(t *testing.T) {
	in := NewInstances(1)
	kept := in.New()
	require.NoError(t, in.Expand(kept))

	for i := 0; i < 100; i++ {
		in.Resolve("")
	}
	st, ok := in.Get(kept)
	require.True(t, ok)
	assert.True(t, st.Expanded)
	assert.Equal(t, 1, in.Len())
}

func TestViewStateExpandIdempotent(t *testing.T) {
	var v ViewState
	assert.False(t, v.Expanded)
	v.Expand()
	v.Expand()
	assert.True(t, v.Expanded)
}
