package planet

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func TestNewPlanet(t *testing.T) {
	p, err := NewPlanet("  Kepler-22 b ")
	require.NoError(t, err)
	assert.Equal(t, "Kepler-22 b", p.Name)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = NewPlanet("   ")
	assert.True(t, errors.IsCode(err, errors.ErrCodePlanetNameInvalid))
}

func TestPlanet_Validate(t *testing.T) {
	p, _ := NewPlanet("Kepler-22 b")
	p.Radius = F(2.1)
	p.Eccentricity = F(0.2)
	assert.NoError(t, p.Validate())

	p.Eccentricity = F(1.2)
	assert.True(t, errors.IsCode(p.Validate(), errors.ErrCodePlanetRecordInvalid))

	p.Eccentricity = nil
	p.Mass = F(-1)
	assert.True(t, errors.IsCode(p.Validate(), errors.ErrCodePlanetRecordInvalid))

	p.Mass = nil
	p.DistancePc = F(-4)
	assert.Error(t, p.Validate())
}

func TestRecord_Validate(t *testing.T) {
	assert.NoError(t, Record{}.Validate())
	assert.NoError(t, exampleRecord().Validate())
	assert.Error(t, Record{TeqK: F(-3)}.Validate())
}

func TestPlanet_ProjectionsAndAssess(t *testing.T) {
	p := &Planet{
		Name: "TRAPPIST-1 e", TeqK: F(250), Radius: F(0.92), Mass: F(0.69),
		SemiMajorAxisAU: F(0.029), StarTempK: F(2566), StarLuminosity: F(0.000553),
		StarType: "M8V",
	}

	rec := p.Record()
	assert.Equal(t, "M8V", rec.StarType)
	assert.Equal(t, p.Radius, rec.Radius)

	s := p.Assess()
	assert.Equal(t, Assessment{Score: s.Score, ESI: s.ESI, Label: s.Label}, p.Habitability)
	assert.True(t, p.IsHabitable())
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "kepler-22 b", NormalizeName("  KEPLER-22   b "))
	assert.Equal(t, NormalizeName("kepler-22 b"), NormalizeName("Kepler-22 b"))
	// Fullwidth forms fold under NFKC.
	assert.Equal(t, "gj 667 c c", NormalizeName("ＧＪ ６６７ Ｃ c"))
}

func TestEvents(t *testing.T) {
	p := &Planet{Name: "Kepler-22 b", Habitability: Assessment{Score: 62, Label: LabelMarginal}}
	e := NewPlanetUpdatedEvent(p)
	assert.Equal(t, EventPlanetUpdated, e.EventType())
	assert.Equal(t, "Kepler-22 b", e.AggregateID())
	assert.Equal(t, 62, e.Habitability.Score)

	r := NewCatalogRefreshRequestedEvent(true, "api")
	assert.Equal(t, EventCatalogRefreshRequested, r.EventType())
	assert.True(t, r.Force)
}

func TestQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, Query{}.Offset())
	assert.Equal(t, 200, Query{Page: 3, Limit: 100}.Offset())
}

func TestEarth_IsACopy(t *testing.T) {
	e := Earth()
	e.GravityG = 3
	assert.Equal(t, 1.0, Earth().GravityG)
}

//Personal.AI order the ending
