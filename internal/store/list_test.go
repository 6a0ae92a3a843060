package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWhereNumbersPlaceholders(t *testing.T) {
	approved := true
	minScore := 0.5
	w := buildWhere(Filter{VehicleMake: "Proton X70", ApprovalFlag: &approved, Search: "50%", MinScore: &minScore})

	assert.Equal(t, " WHERE vehicle_make = $1 AND approval_flag = $2 AND "+
		"(ic_number ILIKE $3 OR vehicle_make ILIKE $3 OR claim_description ILIKE $3) AND damage_severity_score >= $4", w.sql())
	assert.Equal(t, []any{"Proton X70", true, `%50\%%`, 0.5}, w.args)
}

func TestBuildWhereEmpty(t *testing.T) {
	assert.Equal(t, "", buildWhere(Filter{}).sql())
}

func TestOrderBy(t *testing.T) {
	clause, err := orderBy("")
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC, id ASC", clause)

	clause, err = orderBy("repair_amount")
	require.NoError(t, err)
	assert.Equal(t, "repair_amount ASC, id ASC", clause)

	_, err = orderBy("; DROP TABLE claims")
	assert.Error(t, err)
}
