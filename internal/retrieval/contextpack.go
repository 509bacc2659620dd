package retrieval

import (
	"context"
	"fmt"
	"strings"
)

// PackOptions configures the context-pack derived operation.
type PackOptions struct {
	Options
	MaxBytes int
	Full     bool // append full frame text instead of the best snippet
}

// Citation names one source the packed text drew from.
type Citation struct {
	Rank int
	URI  string
}

// Pack runs the retrieval pipeline, then emits a header line plus
// snippet/full-text body per result, stopping before the next header
// would push the pack past MaxBytes.
func Pack(ctx context.Context, opts PackOptions) (string, []Citation, []string, error) {
	resp, err := Run(ctx, opts.Options)
	if err != nil {
		return "", nil, nil, err
	}
	if opts.MaxBytes <= 0 {
		return "", nil, resp.Warnings, fmt.Errorf("retrieval: context pack requires max_bytes > 0")
	}

	var b strings.Builder
	var citations []Citation
	for _, c := range resp.Results {
		header := fmt.Sprintf("[%d] %s %s\n", c.FinalRank, c.URI, c.Title)

		body := c.Snippet
		if opts.Full && opts.TextFetcher != nil {
			if text, err := opts.TextFetcher(c.FrameID); err == nil {
				body = text
			}
		}
		entry := header + body + "\n\n"

		if b.Len()+len(header) > opts.MaxBytes {
			break
		}
		remaining := opts.MaxBytes - b.Len()
		if len(entry) > remaining {
			keep := remaining - len(header) - 2
			if keep < 0 {
				keep = 0
			}
			entry = header + truncateUTF8(body, keep) + "\n\n"
		}
		b.WriteString(entry)
		citations = append(citations, Citation{Rank: c.FinalRank, URI: c.URI})
	}

	return b.String(), citations, resp.Warnings, nil
}

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && isUTF8Continuation(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}

func isUTF8Continuation(b byte) bool {
	return b&0xC0 == 0x80
}
