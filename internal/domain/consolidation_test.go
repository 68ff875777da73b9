package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConsolidationIsOpen(t *testing.T) {
	addrID := uuid.New()
	origin := &Endpoint{AddressID: &addrID, Point: &Point{Lat: 40, Lon: -74}}
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	c := NewConsolidation(origin, nil, nil, now)

	assert.Equal(t, ConsolidationOpen, c.Status)
	assert.Equal(t, PolicyAutoByWeight, c.Policy)
	assert.Equal(t, &addrID, c.OriginAddressID)
	assert.Nil(t, c.DestAddressID)
	assert.Nil(t, c.Destination)
	assert.True(t, c.CreatedAt.Equal(now))
}

func TestConsolidationAttachDetach(t *testing.T) {
	c := NewConsolidation(nil, nil, nil, time.Now())
	s1, s2 := uuid.New(), uuid.New()

	require.NoError(t, c.Attach(s1))
	require.NoError(t, c.Attach(s2))
	require.NoError(t, c.Attach(s1))
	assert.Equal(t, []uuid.UUID{s1, s2}, c.ShipmentIDs)

	c.Detach(s1)
	assert.Equal(t, []uuid.UUID{s2}, c.ShipmentIDs)

	c.Status = ConsolidationSealed
	assert.Error(t, c.Attach(uuid.New()))
}
