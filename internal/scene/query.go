package scene

import (
	"fmt"
	"time"

	"github.com/banshee-data/roomscan/internal/xr"
)

// DefaultMaxResultCount bounds how many entities one query may match.
const DefaultMaxResultCount = 100

// QueryOptions tunes QuerySpaces. The zero value uses
// DefaultMaxResultCount and a zero timeout.
type QueryOptions struct {
	MaxResultCount uint32
	// Timeout is passed to the runtime. Zero submits without waiting.
	Timeout time.Duration
}

func (o QueryOptions) maxResultCount() uint32 {
	if o.MaxResultCount == 0 {
		return DefaultMaxResultCount
	}
	return o.MaxResultCount
}

// QuerySpaces submits a load query scoped by filter and returns the request
// id the runtime assigned. Results are collected with RetrieveQueryResults.
func QuerySpaces(q xr.SpatialEntityQueryExt, session xr.Session, filter xr.SpaceFilterNode, opts QueryOptions) (xr.AsyncRequestID, error) {
	if q == nil {
		return 0, missingTable("spatial entity query")
	}
	if err := xr.ValidateFilterChain(filter); err != nil {
		return 0, fmt.Errorf("invalid space filter: %w", err)
	}

	info := &xr.SpaceQueryInfo{
		Type:           xr.TypeSpaceQueryInfoFB,
		QueryAction:    xr.QueryActionLoad,
		MaxResultCount: opts.maxResultCount(),
		Timeout:        opts.Timeout,
		Filter:         filter,
	}
	var requestID xr.AsyncRequestID
	if err := check(xr.CallQuerySpaces, q.QuerySpaces(session, info, &requestID)); err != nil {
		return 0, err
	}
	logf("query submitted: request=%d max_results=%d filter=%v", requestID, info.MaxResultCount, xr.FilterChainTypes(filter))
	return requestID, nil
}
