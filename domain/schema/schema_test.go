package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestResolveCanonicalHeaders covers the header set the fleet exports use.
func TestResolveCanonicalHeaders(t *testing.T) {
	headers := []string{
		"Operator Name",
		"Shift",
		"Fleet Number",
		"Parent Fleet",
		"Speed (km/h)",
		"GMT Start WITA",
		"GMT End WITA",
	}

	roles := Resolve(headers)

	assert.Equal(t, "Operator Name", roles.Column(RoleOperator))
	assert.Equal(t, "Shift", roles.Column(RoleShift))
	assert.Equal(t, "Fleet Number", roles.Column(RoleFleetAsset))
	assert.Equal(t, "Parent Fleet", roles.Column(RoleFleetType))
	assert.Equal(t, "Speed (km/h)", roles.Column(RoleSpeed))
	assert.Equal(t, "GMT Start WITA", roles.Column(RoleStartTime))
	assert.Equal(t, "GMT End WITA", roles.Column(RoleEndTime))
}

func TestResolveSnakeCaseHeaders(t *testing.T) {
	headers := []string{
		"ticket_number", "parent_fleet", "fleet_number", "nik",
		"operator_name", "alarm_type", "gmt_start", "gmt_end",
		"shift", "speed_kmh",
	}

	roles := Resolve(headers)

	// "nik" appears before "operator_name" in file order, so it wins.
	assert.Equal(t, "nik", roles.Column(RoleOperator))
	assert.Equal(t, "parent_fleet", roles.Column(RoleFleetType))
	// "parent_fleet" also contains "fleet" and comes first in file order.
	assert.Equal(t, "parent_fleet", roles.Column(RoleFleetAsset))
	assert.Equal(t, "speed_kmh", roles.Column(RoleSpeed))
	assert.Equal(t, "gmt_start", roles.Column(RoleStartTime))
	assert.Equal(t, "gmt_end", roles.Column(RoleEndTime))
}

func TestResolveSingleTimestampBindsStartOnly(t *testing.T) {
	roles := Resolve([]string{"driver", "gmt_event_time", "speed"})

	assert.Equal(t, "gmt_event_time", roles.Column(RoleStartTime))
	assert.False(t, roles.Bound(RoleEndTime))
}

func TestResolveMissingRolesStayUnbound(t *testing.T) {
	roles := Resolve([]string{"ticket_number", "area", "condition"})

	for _, role := range Roles {
		assert.False(t, roles.Bound(role), "role %s should be unbound", role)
	}
	assert.Empty(t, roles.Column(RoleSpeed))
}

func TestResolveFirstMatchWinsOnDuplicates(t *testing.T) {
	roles := Resolve([]string{"driver_a", "driver_b", "Shift 1", "shift_2"})

	assert.Equal(t, "driver_a", roles.Column(RoleOperator))
	assert.Equal(t, "Shift 1", roles.Column(RoleShift))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "operator_name", Normalize("  Operator Name "))
	assert.Equal(t, "speed_(km/h)", Normalize("Speed (km/h)"))
}
