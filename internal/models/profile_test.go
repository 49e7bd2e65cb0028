package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Supervisor ")
	require.NoError(t, err)
	assert.Equal(t, RoleSupervisor, r)

	r, err = ParseRole("staff")
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, r)

	_, err = ParseRole("admin")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestIdentity_IsZero(t *testing.T) {
	assert.True(t, Identity{}.IsZero())
	assert.True(t, Identity{UID: "  "}.IsZero())
	assert.False(t, Identity{UID: "u123"}.IsZero())
}

func TestProfile_Clone_IsDeep(t *testing.T) {
	p := &Profile{UID: "u1", DisplayName: "A", Role: RoleStaff, Attributes: map[string]string{"team": "night"}}
	c := p.Clone()
	c.Attributes["team"] = "day"

	assert.Equal(t, "night", p.Attributes["team"])
	assert.Nil(t, (*Profile)(nil).Clone())
}

func TestProfile_Capabilities(t *testing.T) {
	staff := &Profile{UID: "u1", Role: RoleStaff}
	boss := &Profile{UID: "u2", Role: RoleSupervisor}

	assert.False(t, staff.IsSupervisor())
	assert.True(t, boss.IsSupervisor())

	assert.True(t, staff.Can(CapRequestExchange))
	assert.False(t, staff.Can(CapApproveExchange))
	assert.True(t, boss.Can(CapApproveExchange))
	assert.True(t, boss.Can(CapViewSchedule))

	var pending *Profile
	assert.Empty(t, pending.Capabilities())
	assert.False(t, pending.Can(CapViewDashboard))
}
