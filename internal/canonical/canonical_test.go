package canonical

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mspro-labs/bean-atlas/internal/models"
)

func TestRemap(t *testing.T) {
	coffee := models.Coffee{
		Country:  "Columbia",
		Process:  "fully washed",
		Variety:  "geisha",
		Protocol: "fair trade",
	}

	Remap(&coffee)

	require.Equal(t, "Colombia", coffee.Country)
	require.Equal(t, "Washed", coffee.Process)
	require.Equal(t, "Gesha", coffee.Variety)
	require.Equal(t, "Fairtrade", coffee.Protocol)
}

func TestRemapKeepsUnknownValues(t *testing.T) {
	coffee := models.Coffee{Country: "Atlantis", Process: "lunar dried"}
	Remap(&coffee)
	require.Equal(t, "Atlantis", coffee.Country)
	require.Equal(t, "lunar dried", coffee.Process)
}

func TestRemapIdempotent(t *testing.T) {
	coffee := models.Coffee{
		Country:  "kenia",
		Process:  "sun dried",
		Variety:  "sl 28",
		Protocol: "usda organic",
	}

	Remap(&coffee)
	once := coffee
	Remap(&coffee)
	require.Equal(t, once, coffee)
}

// Every canonical value must map back to itself; otherwise a second
// remap pass would drift.
func TestTablesAreClosed(t *testing.T) {
	for name, table := range map[string]map[string]string{
		"countries": countries,
		"processes": processes,
		"varieties": varieties,
		"protocols": protocols,
	} {
		for _, canon := range table {
			require.Equalf(t, canon, lookup(table, canon),
				"%s: canonical value %q does not map to itself", name, canon)
		}
	}
}
