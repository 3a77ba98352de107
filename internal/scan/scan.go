package scan

import (
	"context"

	"eca-morph/internal/errs"
	"eca-morph/internal/raster"

	"golang.org/x/sync/errgroup"
)

// RowResult holds the segments of one row and the foreground columns that had
// no foreground neighbor.
type RowResult struct {
	Row      int       `json:"row"`
	Segments []Segment `json:"segments"`
	Isolated []int     `json:"isolated,omitempty"`
}

// ScanRow finds the runs of fg in row. Column arithmetic is modulo the row
// width, so a run touching both edges is returned as one wrapped segment.
// Expansion is iterative and every column is marked visited once it belongs
// to a segment, an isolated point or the background.
func ScanRow(row []uint8, rowIndex int, fg uint8) (RowResult, error) {
	w := len(row)
	res := RowResult{Row: rowIndex}
	if w == 0 {
		return res, errs.Invalid("width", 0, "row width must be positive")
	}

	if allEqual(row, fg) {
		if w == 1 {
			res.Isolated = []int{0}
			return res, nil
		}
		res.Segments = []Segment{{Row: rowIndex, Start: 0, End: w - 1}}
		return res, nil
	}

	visited := make([]bool, w)
	for j := 0; j < w; j++ {
		if visited[j] {
			continue
		}
		if row[j] != fg {
			visited[j] = true
			continue
		}

		// At least one background cell exists, so both walks terminate
		// within w-1 steps.
		start := j
		for {
			prev := (start - 1 + w) % w
			if row[prev] != fg {
				break
			}
			start = prev
		}
		end := j
		for {
			next := (end + 1) % w
			if row[next] != fg {
				break
			}
			end = next
		}

		if start == end {
			visited[j] = true
			res.Isolated = append(res.Isolated, j)
			continue
		}

		seg := Segment{Row: rowIndex, Start: start, End: end}
		for c := start; ; c = (c + 1) % w {
			visited[c] = true
			if c == end {
				break
			}
		}
		res.Segments = append(res.Segments, seg)
	}
	return res, nil
}

func allEqual(row []uint8, v uint8) bool {
	for _, c := range row {
		if c != v {
			return false
		}
	}
	return true
}

// Options tunes a raster scan.
type Options struct {
	// Foreground is the cell value runs are made of.
	Foreground uint8
	// Workers > 1 scans rows concurrently. Results are identical to a
	// sequential scan.
	Workers int
}

// Scan runs ScanRow over every row of r and collects the results in row
// order.
func Scan(ctx context.Context, r raster.Raster, opts Options) (*Histogram, error) {
	if r.Width() <= 0 {
		return nil, errs.Invalid("width", r.Width(), "row width must be positive")
	}
	h := r.Height()
	results := make([]RowResult, h)

	if opts.Workers <= 1 {
		for y := 0; y < h; y++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			res, err := ScanRow(r.Row(y), y, opts.Foreground)
			if err != nil {
				return nil, err
			}
			results[y] = res
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for y := 0; y < h; y++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := ScanRow(r.Row(y), y, opts.Foreground)
				if err != nil {
					return err
				}
				results[y] = res
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	hist := NewHistogram(r.Width())
	for _, res := range results {
		hist.Add(res)
	}
	return hist, nil
}
