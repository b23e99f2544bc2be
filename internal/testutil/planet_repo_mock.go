package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
)

// PlanetRepoMock is a testify mock of planet.Repository.
type PlanetRepoMock struct {
	mock.Mock
}

var _ planet.Repository = (*PlanetRepoMock)(nil)

func (m *PlanetRepoMock) List(ctx context.Context, q planet.Query) ([]*planet.Planet, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]*planet.Planet)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *PlanetRepoMock) Names(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *PlanetRepoMock) GetByName(ctx context.Context, name string) (*planet.Planet, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*planet.Planet)
	return p, args.Error(1)
}

func (m *PlanetRepoMock) Upsert(ctx context.Context, planets []*planet.Planet) (int, error) {
	args := m.Called(ctx, planets)
	return args.Int(0), args.Error(1)
}

func (m *PlanetRepoMock) LatestUpdate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *PlanetRepoMock) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// SamplePlanets returns three assessed catalog entries: a temperate super
// Earth, a hot Jupiter and a cold giant.
func SamplePlanets() []*planet.Planet {
	ps := []*planet.Planet{
		{
			Name: "Kepler-442 b", HostStar: "Kepler-442", StarType: "K",
			DiscoveryMethod: "Transit", DiscoveryYear: 2015,
			Radius: planet.F(1.34), Mass: planet.F(2.36), TeqK: planet.F(233),
			OrbitalPeriod: planet.F(112.3), SemiMajorAxisAU: planet.F(0.409),
			StarTempK: planet.F(4402), DistancePc: planet.F(370.5),
		},
		{
			Name: "51 Pegasi b", HostStar: "51 Peg", StarType: "G",
			DiscoveryMethod: "Radial Velocity", DiscoveryYear: 1995,
			Radius: planet.F(14.2), Mass: planet.F(146), TeqK: planet.F(1260),
			OrbitalPeriod: planet.F(4.23), SemiMajorAxisAU: planet.F(0.0527),
			StarTempK: planet.F(5768), DistancePc: planet.F(15.5),
		},
		{
			Name: "HD 28185 b", HostStar: "HD 28185", StarType: "G",
			DiscoveryMethod: "Radial Velocity", DiscoveryYear: 2001,
			Mass: planet.F(1827), OrbitalPeriod: planet.F(379),
			SemiMajorAxisAU: planet.F(1.03), DistancePc: planet.F(39.4),
		},
	}
	for _, p := range ps {
		p.Assess()
	}
	return ps
}

//Personal.AI order the ending
