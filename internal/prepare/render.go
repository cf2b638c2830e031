package prepare

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"text/template"

	"github.com/cuemby/dynia/pkg/types"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prepare").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

// CanonicalOrder sorts nodes by descending priority, ties broken by
// lexicographic twoWordId (spec §4.4 "Canonical node ordering").
func CanonicalOrder(nodes []NodeDescriptor) []NodeDescriptor {
	out := make([]NodeDescriptor, len(nodes))
	copy(out, nodes)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].TwoWordID < out[j].TwoWordID
	})
	return out
}

func renderCaddyfile(routes []RouteBackend) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "Caddyfile.tmpl", routes); err != nil {
		return nil, fmt.Errorf("rendering Caddyfile: %w", err)
	}
	return buf.Bytes(), nil
}

type haproxyData struct {
	Nodes     []NodeDescriptor
	ProxyPort int
}

func renderHAProxy(nodes []NodeDescriptor, proxyPort int) ([]byte, error) {
	var buf bytes.Buffer
	data := haproxyData{Nodes: CanonicalOrder(nodes), ProxyPort: proxyPort}
	if err := templates.ExecuteTemplate(&buf, "haproxy.cfg.tmpl", data); err != nil {
		return nil, fmt.Errorf("rendering haproxy.cfg: %w", err)
	}
	return buf.Bytes(), nil
}

type keepalivedData struct {
	State       string
	Interface   string
	Priority    int
	AuthPass    string
	ReservedIP  string
	TrackScript bool
}

func authPass(clusterName string) string {
	if len(clusterName) >= 8 {
		return clusterName[:8]
	}
	return clusterName
}

func renderKeepalived(cluster ClusterDescriptor, self NodeDescriptor, singleNode bool) ([]byte, error) {
	state := "BACKUP"
	if self.Role == types.NodeRoleActive {
		state = "MASTER"
	}

	data := keepalivedData{
		State:       state,
		Interface:   "eth0",
		Priority:    self.Priority,
		AuthPass:    authPass(cluster.Name),
		ReservedIP:  cluster.ReservedIP,
		TrackScript: !singleNode,
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "keepalived.conf.tmpl", data); err != nil {
		return nil, fmt.Errorf("rendering keepalived.conf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderInstallScript() ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "install-runtime.sh.tmpl", nil); err != nil {
		return nil, fmt.Errorf("rendering install-runtime.sh: %w", err)
	}
	return buf.Bytes(), nil
}
