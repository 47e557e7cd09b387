package querying

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casenotify/internal/config"
	"casenotify/internal/external"
)

func versionHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("API-version", version)
	}
}

func TestAdapter_SelectsImplementationsByVersion(t *testing.T) {
	openzaak, _ := newTestRegistry(t, nil)
	openklant, _ := newTestRegistry(t, nil)
	objecten, _ := newTestRegistry(t, nil)
	contactmomenten, _ := newTestRegistry(t, nil)

	reg := &external.ClientRegistry{
		OpenZaak:        openzaak,
		OpenKlant:       openklant,
		Objecten:        objecten,
		ContactMomenten: contactmomenten,
	}

	cfg := &config.Config{}
	cfg.OpenKlant.Version = config.SchemaV1
	cfg.Objecten.Version = config.SchemaV1

	a, err := New(cfg, reg, nil)
	require.NoError(t, err)
	assert.IsType(t, &partyV1{}, a.Parties)
	assert.IsType(t, &feedbackV1{}, a.Feedback)
	assert.IsType(t, &taskV1{}, a.Tasks)

	cfg.OpenKlant.Version = config.SchemaV2
	cfg.Objecten.Version = config.SchemaV2
	a, err = New(cfg, reg, nil)
	require.NoError(t, err)
	assert.IsType(t, &partyV2{}, a.Parties)
	assert.IsType(t, &feedbackV2{}, a.Feedback)
	assert.IsType(t, &taskV2{}, a.Tasks)
}

func TestAdapter_V1RequiresContactMomentRegistry(t *testing.T) {
	api, _ := newTestRegistry(t, nil)
	reg := &external.ClientRegistry{OpenZaak: api, OpenKlant: api, Objecten: api}

	cfg := &config.Config{}
	cfg.OpenKlant.Version = config.SchemaV1
	cfg.Objecten.Version = config.SchemaV2

	_, err := New(cfg, reg, nil)
	assert.Error(t, err)
}

func TestAdapter_VersionsToleratesFailingDependency(t *testing.T) {
	openzaak, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/zaken/api/v1/": versionHandler("1.5.1"),
	})
	openklant, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/klantinteracties/api/v1/": versionHandler("0.5.0"),
	})
	objecten, objectenServer := newTestRegistry(t, nil)
	objectenServer.Close()

	reg := &external.ClientRegistry{OpenZaak: openzaak, OpenKlant: openklant, Objecten: objecten}

	cfg := &config.Config{}
	cfg.OpenKlant.Version = config.SchemaV2
	cfg.Objecten.Version = config.SchemaV2

	a, err := New(cfg, reg, nil)
	require.NoError(t, err)

	versions := a.Versions(context.Background())
	assert.Equal(t, []Version{
		{Name: "OpenZaak", Version: "1.5.1"},
		{Name: "OpenKlant", Version: "0.5.0"},
		{Name: "Objecten", Version: ""},
		{Name: "ContactMomenten", Version: "0.5.0"},
	}, versions)
}

func TestAdapter_CheckDependency(t *testing.T) {
	openzaak, _ := newTestRegistry(t, map[string]http.HandlerFunc{
		"/zaken/api/v1/": versionHandler("1.5.1"),
	})
	objecten, objectenServer := newTestRegistry(t, nil)
	objectenServer.Close()

	reg := &external.ClientRegistry{OpenZaak: openzaak, OpenKlant: openzaak, Objecten: objecten}

	cfg := &config.Config{}
	cfg.OpenKlant.Version = config.SchemaV2
	cfg.Objecten.Version = config.SchemaV2

	a, err := New(cfg, reg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"OpenZaak", "OpenKlant", "Objecten", "ContactMomenten"}, a.Dependencies())
	assert.NoError(t, a.Check(context.Background(), "OpenZaak"))
	assert.Error(t, a.Check(context.Background(), "Objecten"))
	assert.Error(t, a.Check(context.Background(), "Unknown"))
}
