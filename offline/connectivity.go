package offline

import (
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// connectivity remembers whether the last round trip reached the network.
type connectivity struct {
	rt      http.RoundTripper
	offline atomic.Bool
}

func trackConnectivity(rt http.RoundTripper) *connectivity {
	return &connectivity{rt: rt}
}

func (c *connectivity) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := c.rt.RoundTrip(req)
	if err != nil {
		// A cancelled caller says nothing about the connection.
		if req.Context().Err() == nil && !c.offline.Swap(true) {
			log.Warn().Err(err).Msg("offline: connection lost")
		}
		return nil, err
	}
	if c.offline.Swap(false) {
		log.Info().Msg("offline: connection restored")
	}
	return resp, nil
}

func (c *connectivity) Offline() bool {
	return c.offline.Load()
}
