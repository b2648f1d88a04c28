package roomstatus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hebergement/internal/models"
)

func TestMachineTransitions(t *testing.T) {
	m := NewMachine()

	allowed := map[models.RoomStatus][]models.RoomStatus{
		models.RoomAvailable:               {models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceAvailable, models.RoomMaintenanceOutOfService},
		models.RoomOccupied:                {models.RoomAvailable, models.RoomMaintenanceOccupied, models.RoomMaintenanceOutOfService},
		models.RoomMaintenance:             {models.RoomAvailable, models.RoomMaintenanceAvailable, models.RoomMaintenanceOccupied, models.RoomMaintenanceOutOfService},
		models.RoomMaintenanceAvailable:    {models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceOutOfService},
		models.RoomMaintenanceOccupied:     {models.RoomOccupied, models.RoomMaintenance, models.RoomMaintenanceAvailable, models.RoomMaintenanceOutOfService},
		models.RoomMaintenanceOutOfService: {models.RoomAvailable, models.RoomMaintenance, models.RoomMaintenanceAvailable},
	}

	for _, from := range models.RoomStatuses {
		for _, to := range models.RoomStatuses {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, want, m.CanTransition(from, to))
				err := m.Validate(from, to)
				if want {
					assert.NoError(t, err)
				} else {
					assert.ErrorIs(t, err, models.ErrInvalidTransition)
				}
			})
		}
	}
}

func TestMachine_UnknownState(t *testing.T) {
	m := NewMachine()
	assert.False(t, m.CanTransition("cleaning", models.RoomAvailable))
	assert.Empty(t, m.ValidTransitions("cleaning"))
}

func TestMachine_ValidTransitionsIsCopy(t *testing.T) {
	m := NewMachine()
	got := m.ValidTransitions(models.RoomOccupied)
	require.Len(t, got, 3)
	got[0] = models.RoomMaintenanceOutOfService
	assert.Equal(t, models.RoomAvailable, m.ValidTransitions(models.RoomOccupied)[0])
}

func TestCanBeReserved(t *testing.T) {
	for _, s := range models.RoomStatuses {
		want := s == models.RoomAvailable || s == models.RoomMaintenanceAvailable
		assert.Equal(t, want, CanBeReserved(s), s)
	}
}

func TestRequiresConfirmation(t *testing.T) {
	tests := []struct {
		from, to models.RoomStatus
		want     bool
	}{
		{models.RoomOccupied, models.RoomMaintenanceOccupied, true},
		{models.RoomOccupied, models.RoomMaintenanceOutOfService, true},
		{models.RoomAvailable, models.RoomMaintenanceOutOfService, true},
		{models.RoomMaintenance, models.RoomMaintenanceOutOfService, true},
		{models.RoomMaintenanceOccupied, models.RoomAvailable, true},
		{models.RoomMaintenanceOutOfService, models.RoomOccupied, true},
		{models.RoomOccupied, models.RoomAvailable, false},
		{models.RoomAvailable, models.RoomOccupied, false},
		{models.RoomMaintenance, models.RoomAvailable, false},
		{models.RoomMaintenanceOccupied, models.RoomOccupied, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiresConfirmation(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestEvaluate(t *testing.T) {
	m := NewMachine()

	t.Run("occupied to out of service mentions relocation", func(t *testing.T) {
		d, err := m.Evaluate(models.RoomOccupied, models.RoomMaintenanceOutOfService)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.True(t, d.RequiresConfirmation)
		assert.Contains(t, d.Message, "relog")
		assert.Contains(t, d.Message, "occupée")
	})

	t.Run("plain transition", func(t *testing.T) {
		d, err := m.Evaluate(models.RoomAvailable, models.RoomOccupied)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.False(t, d.RequiresConfirmation)
		assert.Empty(t, d.Message)
	})

	t.Run("rejected", func(t *testing.T) {
		d, err := m.Evaluate(models.RoomMaintenanceOutOfService, models.RoomOccupied)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.False(t, d.Allowed)
	})
}

func TestConfirmationMessage(t *testing.T) {
	assert.Contains(t, ConfirmationMessage(models.RoomAvailable, models.RoomMaintenanceOutOfService), "hors d'usage")
	assert.Contains(t, ConfirmationMessage(models.RoomMaintenanceOccupied, models.RoomAvailable), "maintenance est terminée")
	assert.Contains(t, ConfirmationMessage(models.RoomMaintenanceOutOfService, models.RoomOccupied), "réparations")
	assert.NotContains(t, ConfirmationMessage(models.RoomOccupied, models.RoomMaintenanceOccupied), "relog")
	assert.Contains(t, ConfirmationMessage(models.RoomAvailable, models.RoomOccupied), "Disponible")
}

func TestParse(t *testing.T) {
	s, err := Parse(" Maintenance_Available ")
	require.NoError(t, err)
	assert.Equal(t, models.RoomMaintenanceAvailable, s)

	_, err = Parse("cleaning")
	assert.ErrorIs(t, err, models.ErrUnknownStatus)
	assert.Equal(t, "Inconnu", Label("cleaning"))
}
