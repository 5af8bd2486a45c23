package extract

import (
	"context"
	"strconv"
	"strings"

	"animeku/internal/httputil"

	"github.com/dustin/go-humanize"
)

type probeResult struct {
	ok     bool
	status int
	length int64 // -1 when the host did not report one
}

// probe issues one HEAD request bounded by ProbeTimeout.
func (r *Resolver) probe(ctx context.Context, ref string) (probeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.ProbeTimeout)
	defer cancel()

	resp, err := httputil.Head(ctx, r.client, ref, nil)
	if err != nil {
		return probeResult{}, err
	}
	defer resp.Body.Close()

	res := probeResult{
		ok:     httputil.IsSuccess(resp.StatusCode),
		status: resp.StatusCode,
		length: -1,
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
			res.length = n
		}
	}
	return res, nil
}

// formatSize renders n in binary units: 1048576 is "1 MiB", 1572864 is "1.5 MiB".
func formatSize(n int64) string {
	return strings.Replace(humanize.IBytes(uint64(n)), ".0 ", " ", 1)
}
