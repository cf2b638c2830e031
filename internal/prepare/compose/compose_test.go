package compose

import (
	"testing"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("not: [valid"))
	var schemaErr *dynerr.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestParseRejectsMissingServicesKey(t *testing.T) {
	_, err := Parse([]byte("version: \"3\"\n"))
	var schemaErr *dynerr.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSelectEntryServicePrefersLabeledService(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    ports: ["8080:80"]
  api:
    labels:
      dynia.entry: "true"
    ports: ["9000:9000"]
`))
	require.NoError(t, err)

	svc, err := doc.SelectEntryService()
	require.NoError(t, err)
	assert.Equal(t, "api", svc.Name)
}

func TestSelectEntryServiceFallsBackToNamedWeb(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  worker:
    ports: ["9000:9000"]
  web:
    ports: ["8080:80"]
`))
	require.NoError(t, err)

	svc, err := doc.SelectEntryService()
	require.NoError(t, err)
	assert.Equal(t, "web", svc.Name)
}

func TestSelectEntryServiceFallsBackToFirstInDocumentOrder(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  frontend:
    ports: ["3000:3000"]
  backend:
    ports: ["9000:9000"]
`))
	require.NoError(t, err)

	svc, err := doc.SelectEntryService()
	require.NoError(t, err)
	assert.Equal(t, "frontend", svc.Name)
}

func TestSelectEntryServiceRejectsEmptyDocument(t *testing.T) {
	doc := &Document{}
	_, err := doc.SelectEntryService()
	var validationErr *dynerr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestEntryPortPrefersLabelOverPublishedPort(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    labels:
      dynia.port: "9090"
    ports: ["8080:80"]
`))
	require.NoError(t, err)
	svc, err := doc.SelectEntryService()
	require.NoError(t, err)

	port, err := svc.EntryPort()
	require.NoError(t, err)
	assert.Equal(t, 9090, port)
}

func TestEntryPortRejectsInvalidLabel(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    labels:
      dynia.port: "not-a-port"
`))
	require.NoError(t, err)
	svc, err := doc.SelectEntryService()
	require.NoError(t, err)

	_, err = svc.EntryPort()
	var validationErr *dynerr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestEntryPortParsesContainerSideOfHostMapping(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    ports: ["127.0.0.1:8080:80/tcp"]
`))
	require.NoError(t, err)
	svc, err := doc.SelectEntryService()
	require.NoError(t, err)

	port, err := svc.EntryPort()
	require.NoError(t, err)
	assert.Equal(t, 80, port)
}

func TestEntryPortReturnsMissingEntryPortWhenNoneDeclared(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    image: nginx
`))
	require.NoError(t, err)
	svc, err := doc.SelectEntryService()
	require.NoError(t, err)

	_, err = svc.EntryPort()
	var missing *MissingEntryPort
	assert.ErrorAs(t, err, &missing)
}

func TestParseSupportsSequenceStyleLabels(t *testing.T) {
	doc, err := Parse([]byte(`
services:
  web:
    labels:
      - "dynia.entry=true"
    ports: ["8080:80"]
`))
	require.NoError(t, err)
	svc, err := doc.SelectEntryService()
	require.NoError(t, err)
	assert.Equal(t, "web", svc.Name)
}
