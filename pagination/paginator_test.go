package pagination

import (
	"strconv"
	"testing"
)

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

var paginateTests = []struct {
	name       string
	totalItems int
	size       int
	raw        string
	wantNumber int
	wantLen    int
	wantPages  int
	wantPrev   bool
	wantNext   bool
}{
	{"first of two", 13, 10, "1", 1, 10, 2, false, true},
	{"last of two", 13, 10, "2", 2, 3, 2, true, false},
	{"missing param means first", 13, 10, "", 1, 10, 2, false, true},
	{"beyond last clamps to last", 13, 10, "99", 2, 3, 2, true, false},
	{"zero clamps to last", 13, 10, "0", 2, 3, 2, true, false},
	{"negative clamps to last", 13, 10, "-3", 2, 3, 2, true, false},
	{"non-numeric clamps to last", 13, 10, "abc", 2, 3, 2, true, false},
	{"exact multiple", 20, 10, "2", 2, 10, 2, true, false},
	{"single page", 5, 10, "1", 1, 5, 1, false, false},
	{"empty set still has one page", 0, 10, "1", 1, 0, 1, false, false},
	{"profile page size", 3, 2, "2", 2, 1, 2, true, false},
}

func TestPaginate(t *testing.T) {
	for _, tt := range paginateTests {
		t.Run(tt.name, func(t *testing.T) {
			page := Paginate(makeItems(tt.totalItems), tt.size, tt.raw)

			if page.Number != tt.wantNumber {
				t.Errorf("Number = %d, want %d", page.Number, tt.wantNumber)
			}
			if len(page.Items) != tt.wantLen {
				t.Errorf("len(Items) = %d, want %d", len(page.Items), tt.wantLen)
			}
			if page.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", page.TotalPages, tt.wantPages)
			}
			if page.TotalItems != tt.totalItems {
				t.Errorf("TotalItems = %d, want %d", page.TotalItems, tt.totalItems)
			}
			if page.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v, want %v", page.HasPrev, tt.wantPrev)
			}
			if page.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v, want %v", page.HasNext, tt.wantNext)
			}
		})
	}
}

// Walking every page must visit each item exactly once, and the page count
// must be ceil(N/P).
func TestPaginateCoversAllItems(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 13, 25, 100} {
		for _, size := range []int{1, 2, 3, 10} {
			items := makeItems(n)
			first := Paginate(items, size, "1")

			wantPages := (n + size - 1) / size
			if wantPages == 0 {
				wantPages = 1
			}
			if first.TotalPages != wantPages {
				t.Errorf("n=%d size=%d: TotalPages = %d, want %d", n, size, first.TotalPages, wantPages)
			}

			seen := 0
			for number := 1; number <= first.TotalPages; number++ {
				page := Paginate(items, size, strconv.Itoa(number))
				seen += len(page.Items)
			}
			if seen != n {
				t.Errorf("n=%d size=%d: items across pages = %d, want %d", n, size, seen, n)
			}
		}
	}
}

func TestPaginateClampEqualsLastPage(t *testing.T) {
	items := makeItems(13)

	last := Paginate(items, 10, "2")
	clamped := Paginate(items, 10, "12345")

	if clamped.Number != last.Number || len(clamped.Items) != len(last.Items) {
		t.Errorf("clamped page = (%d, %d items), want (%d, %d items)",
			clamped.Number, len(clamped.Items), last.Number, len(last.Items))
	}
	for i := range last.Items {
		if clamped.Items[i] != last.Items[i] {
			t.Errorf("clamped item %d = %v, want %v", i, clamped.Items[i], last.Items[i])
		}
	}
}
