// Package state implements the control plane's State Store (spec §4.1,
// §6.3): the entire control-plane document, persisted atomically as a
// single JSON file, with typed upsert/get/list/remove accessors and a
// secret-leak guard that runs on every write.
package state

import (
	"encoding/json"

	"github.com/cuemby/dynia/pkg/types"
)

// CurrentSchemaVersion is the schema version this build writes.
const CurrentSchemaVersion = 1

// Document is the full on-disk shape described in spec §6.3. Legacy
// fields from an inherited warren-style document are kept as opaque raw
// messages: Dynia never interprets them, only round-trips them so an
// old document doesn't fail to load.
type Document struct {
	SchemaVersion int               `json:"schemaVersion"`
	Nodes         []json.RawMessage `json:"nodes,omitempty"`
	Deployments   []json.RawMessage `json:"deployments,omitempty"`

	Clusters     []*types.Cluster     `json:"clusters"`
	ClusterNodes []*types.ClusterNode `json:"clusterNodes"`
	Routes       []*types.Route       `json:"routes"`
}

// newEmptyDocument returns a freshly initialized, schema-valid document
// with no clusters/nodes/routes (spec §4.1: "missing file yields a
// freshly initialized empty document").
func newEmptyDocument() *Document {
	return &Document{
		SchemaVersion: CurrentSchemaVersion,
		Clusters:      []*types.Cluster{},
		ClusterNodes:  []*types.ClusterNode{},
		Routes:        []*types.Route{},
	}
}

func (d *Document) clone() *Document {
	out := &Document{
		SchemaVersion: d.SchemaVersion,
		Nodes:         append([]json.RawMessage{}, d.Nodes...),
		Deployments:   append([]json.RawMessage{}, d.Deployments...),
	}
	for _, c := range d.Clusters {
		cc := *c
		out.Clusters = append(out.Clusters, &cc)
	}
	for _, n := range d.ClusterNodes {
		nn := *n
		out.ClusterNodes = append(out.ClusterNodes, &nn)
	}
	for _, r := range d.Routes {
		rr := *r
		out.Routes = append(out.Routes, &rr)
	}
	return out
}
