package types

import "time"

// Cluster is a single HA fleet behind one Reserved IP.
type Cluster struct {
	Name         string // unique, lowercase DNS label
	BaseDomain   string
	Region       string
	Size         string
	ReservedIP   string
	ReservedIPID string
	VPCID        string
	ActiveNodeID string // twoWordId of the active ClusterNode, empty if none
	CertStatus   string // "", "none", "self-signed", "origin" — mirrors certservice.Status
	CertExpires  time.Time
	CreatedAt    time.Time
}

// NodeRole is the role a ClusterNode currently holds.
type NodeRole string

const (
	NodeRoleActive  NodeRole = "active"
	NodeRoleStandby NodeRole = "standby"
)

// NodeStatus is the lifecycle status of a ClusterNode.
type NodeStatus string

const (
	NodeStatusProvisioning NodeStatus = "provisioning"
	NodeStatusActive       NodeStatus = "active"
	NodeStatusFailed       NodeStatus = "failed"
	NodeStatusInactive     NodeStatus = "inactive"
)

// ClusterNode is one VM in a Cluster, keyed by (ClusterName, TwoWordID).
type ClusterNode struct {
	ClusterName string
	TwoWordID   string // matches ^[a-z]+-[a-z]+$
	DropletID   string // opaque provider handle
	Hostname    string // "${clusterName}-${twoWordId}"
	PublicIP    string
	PrivateIP   string // optional
	Role        NodeRole
	Priority    int // 1-255, strictly decreasing from active (200)
	Status      NodeStatus
	CreatedAt   time.Time
}

// Route is a deployed host on a Cluster, keyed by (ClusterName, Host).
type Route struct {
	ClusterName   string
	Host          string // FQDN
	HealthPath    string // starts with "/", <=255 chars
	Proxied       bool
	TLSEnabled    bool
	IsPlaceholder bool
	ComposePath   string // optional
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
