// Package scene discovers persisted spatial anchors through a mixed-reality
// runtime and resolves them into a room layout.
//
// One query cycle runs as:
//
//	SupportsScene            capability probe, gates everything else
//	NewRoomLayoutFilter      base -> component(room layout) -> storage location
//	QuerySpaces              submit, obtain an async request id
//	RetrieveQueryResults     count-then-fill into a caller-owned buffer
//	Resolver.Resolve         typed anchors, nested count-then-fill for walls
//
// Pipeline.Run drives a full cycle and reports the state it ended in. Every
// call into the runtime is a blocking round trip and the package holds no
// state between cycles. Callers must not run two cycles on the same session
// at once; see the scanner package for a host that enforces this.
package scene

import "github.com/banshee-data/roomscan/internal/monitoring"

var logf = monitoring.Component("SCENE")
