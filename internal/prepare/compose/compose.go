// Package compose parses a user-supplied docker-compose document just
// far enough to select the entry service and its published port (spec
// §4.4 "Entry-service selection"). It uses yaml.Node instead of a
// plain map so that document order survives into the "first service
// in document order" fallback rule — an ordinary map[string]any would
// silently randomize that order.
package compose

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/dynia/internal/dynerr"
)

// Service is one compose service, with just the fields entry-service
// selection cares about.
type Service struct {
	Name    string
	Labels  map[string]string
	Ports   []string // raw compose port specs, e.g. "8080:80" or "80"
	Order   int
}

// Document is the subset of a compose file needed to pick an entry
// service.
type Document struct {
	Services []Service // in document order
}

// Parse reads a compose YAML document and extracts its services in
// declaration order.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, &dynerr.SchemaError{Message: fmt.Sprintf("invalid compose yaml: %v", err)}
	}
	if len(root.Content) == 0 {
		return nil, &dynerr.SchemaError{Message: "empty compose document"}
	}

	docRoot := root.Content[0]
	servicesNode := findMapValue(docRoot, "services")
	if servicesNode == nil {
		return nil, &dynerr.SchemaError{Message: "compose document has no top-level services map"}
	}

	doc := &Document{}
	for i := 0; i+1 < len(servicesNode.Content); i += 2 {
		nameNode := servicesNode.Content[i]
		bodyNode := servicesNode.Content[i+1]

		svc := Service{Name: nameNode.Value, Order: i / 2, Labels: map[string]string{}}

		if labelsNode := findMapValue(bodyNode, "labels"); labelsNode != nil {
			parseLabels(labelsNode, svc.Labels)
		}
		if portsNode := findMapValue(bodyNode, "ports"); portsNode != nil {
			for _, p := range portsNode.Content {
				svc.Ports = append(svc.Ports, p.Value)
			}
		}

		doc.Services = append(doc.Services, svc)
	}

	return doc, nil
}

func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// parseLabels accepts both compose label forms: a mapping
// (`KEY: value`) and a sequence (`- KEY=value`).
func parseLabels(node *yaml.Node, out map[string]string) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			out[node.Content[i].Value] = node.Content[i+1].Value
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			parts := strings.SplitN(item.Value, "=", 2)
			if len(parts) == 2 {
				out[parts[0]] = parts[1]
			}
		}
	}
}

// SelectEntryService applies the three-rule fallback from spec §4.4:
// label dynia.entry=true wins; else a service literally named "web";
// else the first service in document order.
func (d *Document) SelectEntryService() (*Service, error) {
	if len(d.Services) == 0 {
		return nil, &dynerr.ValidationError{Field: "services", Message: "compose document declares no services"}
	}
	for i := range d.Services {
		if d.Services[i].Labels["dynia.entry"] == "true" {
			return &d.Services[i], nil
		}
	}
	for i := range d.Services {
		if d.Services[i].Name == "web" {
			return &d.Services[i], nil
		}
	}
	first := d.Services[0]
	for i := range d.Services {
		if d.Services[i].Order < first.Order {
			first = d.Services[i]
		}
	}
	return &first, nil
}

// MissingEntryPort is returned when an entry service declares no
// usable port (spec §4.4).
type MissingEntryPort struct {
	Service string
}

func (e *MissingEntryPort) Error() string {
	return fmt.Sprintf("service %q has no dynia.port label and no exposed port", e.Service)
}

// EntryPort resolves the entry service's port: label dynia.port (must
// parse as 1-65535) wins, else the first exposed port, else
// MissingEntryPort.
func (s *Service) EntryPort() (int, error) {
	if raw, ok := s.Labels["dynia.port"]; ok {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			return 0, &dynerr.ValidationError{Field: "dynia.port", Message: fmt.Sprintf("%q is not a valid port", raw)}
		}
		return port, nil
	}
	if len(s.Ports) > 0 {
		return parseContainerPort(s.Ports[0])
	}
	return 0, &MissingEntryPort{Service: s.Name}
}

// parseContainerPort extracts the container-side port from a compose
// port spec ("host:container", "host:container/proto", or a bare
// "container").
func parseContainerPort(spec string) (int, error) {
	spec = strings.SplitN(spec, "/", 2)[0]
	parts := strings.Split(spec, ":")
	last := parts[len(parts)-1]
	port, err := strconv.Atoi(last)
	if err != nil || port < 1 || port > 65535 {
		return 0, &dynerr.SchemaError{Message: fmt.Sprintf("unparseable port spec %q", spec)}
	}
	return port, nil
}
