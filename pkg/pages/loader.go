package pages

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/profit-sniffer/pkg/models"
)

// SharedLoader collapses concurrent token set fetches for the same Telegram id
// into a single backend call. The refresh button and the mount fetch can both
// hit it without doubling the traffic.
type SharedLoader struct {
	next  TokenSetGetter
	group singleflight.Group
}

func NewSharedLoader(next TokenSetGetter) *SharedLoader {
	return &SharedLoader{next: next}
}

// GetTokenSet joins an in-flight fetch for telegramID or starts one. The shared
// call outlives any single caller; a caller whose ctx ends stops waiting.
func (l *SharedLoader) GetTokenSet(ctx context.Context, telegramID string) (*models.TokenSet, error) {
	ch := l.group.DoChan(telegramID, func() (interface{}, error) {
		return l.next.GetTokenSet(context.WithoutCancel(ctx), telegramID)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.TokenSet), nil
	}
}
