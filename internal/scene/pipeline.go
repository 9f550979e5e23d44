package scene

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/roomscan/internal/xr"
)

// State is a step of one query cycle.
type State int

const (
	StateIdle State = iota
	// StateProbed means the probe found scene support.
	StateProbed
	// StateUnsupported is the terminal "probed, unsupported" state.
	StateUnsupported
	StateFiltered
	StateIssued
	StateSizeKnown
	StateFilled
	StateResolved
	StateFailed
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateProbed:      "probed",
	StateUnsupported: "unsupported",
	StateFiltered:    "filtered",
	StateIssued:      "issued",
	StateSizeKnown:   "size_known",
	StateFilled:      "filled",
	StateResolved:    "resolved",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateUnsupported || s == StateResolved || s == StateFailed
}

// Handles are the host-owned runtime handles one cycle operates on. The
// pipeline never creates or destroys them.
type Handles struct {
	Connection     xr.Connection
	System         xr.SystemID
	Session        xr.Session
	ReferenceSpace xr.Space
}

// Options configures a Pipeline.
type Options struct {
	Location xr.StorageLocation
	Query    QueryOptions
	Retrieve RetrieveOptions
}

// Result is the outcome of one cycle.
type Result struct {
	State      State             `json:"state"`
	History    []State           `json:"history"`
	RequestID  xr.AsyncRequestID `json:"request_id,omitempty"`
	Records    int               `json:"records"`
	Resolution *Resolution       `json:"resolution,omitempty"`
	// Err is set when State is StateFailed.
	Err error `json:"-"`
}

// Supported reports whether the probe found scene support.
func (r *Result) Supported() bool {
	for _, s := range r.History {
		if s == StateProbed {
			return true
		}
	}
	return false
}

// MarshalJSON adds the error text and the sorted surface ids.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	out := struct {
		*plain
		Error    string   `json:"error,omitempty"`
		Code     *int32   `json:"code,omitempty"`
		Surfaces []string `json:"surfaces,omitempty"`
	}{plain: (*plain)(r)}
	if r.Err != nil {
		out.Error = r.Err.Error()
		if code, ok := NativeCode(r.Err); ok {
			c := int32(code)
			out.Code = &c
		}
	}
	if r.Resolution != nil {
		out.Surfaces = r.Resolution.SurfaceIDs()
	}
	return json.Marshal(out)
}

func (r *Result) enter(s State) {
	r.State = s
	r.History = append(r.History, s)
}

func (r *Result) fail(err error) (*Result, error) {
	r.Err = err
	r.enter(StateFailed)
	logf("query cycle failed: %v", err)
	return r, err
}

// Pipeline runs query cycles. It keeps no state between cycles.
type Pipeline struct {
	opts Options
}

// NewPipeline returns a Pipeline. An invalid storage location defaults to
// local storage.
func NewPipeline(opts Options) *Pipeline {
	if opts.Location == xr.StorageLocationInvalid {
		opts.Location = xr.StorageLocationLocal
	}
	return &Pipeline{opts: opts}
}

// Run executes one full cycle against h. An unsupported runtime yields a
// result in StateUnsupported and a nil error. On failure the result is in
// StateFailed and the error is returned as well. ctx is only consulted
// before the query is submitted; once submitted a query runs to completion.
func (p *Pipeline) Run(ctx context.Context, h Handles) (*Result, error) {
	res := &Result{}
	res.enter(StateIdle)
	if h.Connection == nil {
		return res.fail(errors.New("no runtime connection"))
	}

	supported, err := SupportsScene(h.Connection, h.System)
	if err != nil {
		return res.fail(err)
	}
	if !supported {
		res.enter(StateUnsupported)
		logf("scene understanding is not supported with this runtime")
		return res, nil
	}
	res.enter(StateProbed)

	ext := h.Connection.Extensions()
	if ext.SpatialEntityQuery == nil {
		return res.fail(missingTable("spatial entity query"))
	}
	if ext.Scene == nil {
		return res.fail(missingTable("scene"))
	}
	if ext.SpatialEntity == nil {
		return res.fail(missingTable("spatial entity"))
	}

	filter := NewRoomLayoutFilter(p.opts.Location)
	res.enter(StateFiltered)

	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}
	requestID, err := QuerySpaces(ext.SpatialEntityQuery, h.Session, filter, p.opts.Query)
	if err != nil {
		return res.fail(err)
	}
	res.RequestID = requestID
	res.enter(StateIssued)

	retrieve := p.opts.Retrieve
	retrieve.OnSized = func(uint32) { res.enter(StateSizeKnown) }
	retrieve.OnFilled = func(uint32) { res.enter(StateFilled) }
	records, err := RetrieveQueryResults(ext.SpatialEntityQuery, h.Session, requestID, retrieve)
	if err != nil {
		return res.fail(err)
	}
	res.Records = len(records)
	logf("retrieved %d space query results for request %d", len(records), requestID)

	resolver := &Resolver{
		Scene:          ext.Scene,
		SpatialEntity:  ext.SpatialEntity,
		Session:        h.Session,
		ReferenceSpace: h.ReferenceSpace,
		Options:        RetrieveOptions{RetryOnGrowth: p.opts.Retrieve.RetryOnGrowth},
	}
	resolution, err := resolver.Resolve(records)
	if err != nil {
		return res.fail(err)
	}
	res.Resolution = resolution
	res.enter(StateResolved)
	return res, nil
}
