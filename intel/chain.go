package intel

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"url-vetting/vetting"
)

// Chain combines reputation sources. All sources are queried at once and
// the first malicious verdict in source order wins.
type Chain []vetting.ReputationChecker

// CheckReputation implements vetting.ReputationChecker.
func (c Chain) CheckReputation(ctx context.Context, rawURL string) vetting.Reputation {
	verdicts := make([]vetting.Reputation, len(c))
	var g errgroup.Group
	for i, src := range c {
		if src == nil {
			continue
		}
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[Reputation] source %d panicked: %v", i, r)
				}
			}()
			verdicts[i] = src.CheckReputation(ctx, rawURL)
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range verdicts {
		if v.Malicious {
			return v
		}
	}
	return vetting.Reputation{}
}
