package commands

import (
	"testing"

	"github.com/kobzarvs/jsxpad/internal/buffer"
)

func TestWrapInTag(t *testing.T) {
	cases := []struct {
		name string
		text string
		sels []buffer.Range
		want string
		curs []buffer.Range
	}{
		{
			"cursor at start",
			"<div>First line</div>",
			[]buffer.Range{cursor(0, 0)},
			"<></><div>First line</div>",
			[]buffer.Range{cursor(0, 1), cursor(0, 4)},
		},
		{
			"single line selection",
			"<div>First line</div>",
			[]buffer.Range{span(0, 5, 0, 15)},
			"<div><>First line</></div>",
			[]buffer.Range{cursor(0, 6), cursor(0, 19)},
		},
		{
			"reversed selection",
			"<div>First line</div>",
			[]buffer.Range{span(0, 15, 0, 5)},
			"<div><>First line</></div>",
			[]buffer.Range{cursor(0, 6), cursor(0, 19)},
		},
		{
			"multi-line",
			"  <div>\n    x\n  </div>",
			[]buffer.Range{span(0, 2, 2, 8)},
			"  <>\n    <div>\n      x\n    </div>\n  </>",
			[]buffer.Range{cursor(0, 3), cursor(4, 4)},
		},
		{
			"multi-line keeps blank lines bare",
			"<a>\n\n</a>",
			[]buffer.Range{span(0, 0, 2, 4)},
			"<>\n  <a>\n\n  </a>\n</>",
			[]buffer.Range{cursor(0, 1), cursor(4, 2)},
		},
		{
			"selection ending at column 0",
			"<a/>\n<b/>",
			[]buffer.Range{span(0, 0, 1, 0)},
			"<><a/></>\n<b/>",
			[]buffer.Range{cursor(0, 1), cursor(0, 8)},
		},
		{
			"two cursors on separate lines",
			"<a/>\n<b/>",
			[]buffer.Range{span(0, 0, 0, 4), span(1, 0, 1, 4)},
			"<><a/></>\n<><b/></>",
			[]buffer.Range{cursor(0, 1), cursor(0, 8), cursor(1, 1), cursor(1, 8)},
		},
		{
			"later range shifted by inserted lines",
			"<a>\nx\n</a>\ny",
			[]buffer.Range{span(0, 0, 2, 4), span(3, 0, 3, 1)},
			"<>\n  <a>\n  x\n  </a>\n</>\n<>y</>",
			[]buffer.Range{cursor(0, 1), cursor(4, 2), cursor(5, 1), cursor(5, 5)},
		},
		{
			"two ranges on one line",
			"ab cd",
			[]buffer.Range{span(0, 3, 0, 5), span(0, 0, 0, 2)},
			"<>ab</> <>cd</>",
			[]buffer.Range{cursor(0, 9), cursor(0, 14), cursor(0, 1), cursor(0, 6)},
		},
		{
			"overlapping ranges merge",
			"abcdef",
			[]buffer.Range{span(0, 0, 0, 4), span(0, 2, 0, 6)},
			"<>abcdef</>",
			[]buffer.Range{cursor(0, 1), cursor(0, 10)},
		},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			got, res, ok := run(t, WrapInTag, tt.text, tt.sels...)
			if !ok {
				t.Fatalf("wrap was a no-op")
			}
			if got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
			wantSelections(t, res.Selections, tt.curs...)
		})
	}
}

func TestWrapPad(t *testing.T) {
	if got := wrapPad([]rune("\t  <a>"), 3); got != "\t  " {
		t.Fatalf("wrapPad = %q, want indentation kept", got)
	}
	if got := wrapPad([]rune("x = <a>"), 4); got != "    " {
		t.Fatalf("wrapPad = %q, want 4 spaces", got)
	}
}
