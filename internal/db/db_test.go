package db

import (
	"testing"
	"time"

	"filippo.io/age"
	"github.com/oklog/ulid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wikirace/wikirace/internal/constants"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func newRaceID(t *testing.T, at time.Time) string {
	t.Helper()
	entropy := ulid.Monotonic(zeroReader{}, 0)
	id, err := ulid.New(ulid.Timestamp(at), entropy)
	require.NoError(t, err)
	return id.String()
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestSaveAndGetRace(t *testing.T) {
	database := newTestDB(t)

	race := Race{
		ID:          newRaceID(t, time.Now()),
		Start:       "Дружба",
		Finish:      "Рим",
		Path:        []string{"Дружба", "Італія", "Рим"},
		DurationMS:  1200,
		PagesLoaded: 42,
		PagesCached: 7,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, database.SaveRace(race))

	got, err := database.GetRace(race.ID)
	require.NoError(t, err)
	assert.Equal(t, race.Start, got.Start)
	assert.Equal(t, race.Finish, got.Finish)
	assert.Equal(t, race.Path, got.Path)
	assert.Equal(t, race.DurationMS, got.DurationMS)
	assert.Equal(t, race.PagesLoaded, got.PagesLoaded)
	assert.Equal(t, race.PagesCached, got.PagesCached)
}

func TestGetRaceHistory(t *testing.T) {
	database := newTestDB(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		race := Race{
			ID:        newRaceID(t, base.Add(time.Duration(i)*time.Minute)),
			Start:     "Старт",
			Finish:    "Фініш",
			Path:      []string{"Старт", "Фініш"},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, database.SaveRace(race))
	}

	races, err := database.GetRaceHistory(3)
	require.NoError(t, err)
	require.Len(t, races, 3)
	// Newest first.
	assert.True(t, races[0].ID > races[1].ID)
	assert.True(t, races[1].ID > races[2].ID)
}

func TestPruneOldRaces(t *testing.T) {
	database := newTestDB(t)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		race := Race{
			ID:        newRaceID(t, base.Add(time.Duration(i)*time.Minute)),
			Start:     "A",
			Finish:    "B",
			Path:      []string{},
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, database.SaveRace(race))
	}

	pruned, err := database.PruneOldRaces(4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pruned)

	races, err := database.GetRaceHistory(100)
	require.NoError(t, err)
	assert.Len(t, races, 4)
}

func setTestIdentity(t *testing.T) {
	t.Helper()
	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	t.Setenv(constants.EnvVarAgeIdentity, identity.String())
}

func TestSecretRoundTrip(t *testing.T) {
	database := newTestDB(t)
	setTestIdentity(t)

	require.NoError(t, database.SetSecret("db-password", "hunter2"))

	value, err := database.GetSecretDecryptedValue("db-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)

	// The stored value is encrypted, not the plain text.
	secrets, err := database.GetSecretsList()
	require.NoError(t, err)
	require.Len(t, secrets, 1)
	assert.Equal(t, "db-password", secrets[0].Name)
	assert.NotContains(t, secrets[0].EncryptedValue, "hunter2")
}

func TestSetSecret_Upsert(t *testing.T) {
	database := newTestDB(t)
	setTestIdentity(t)

	require.NoError(t, database.SetSecret("token", "first"))
	require.NoError(t, database.SetSecret("token", "second"))

	value, err := database.GetSecretDecryptedValue("token")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	secrets, err := database.GetSecretsList()
	require.NoError(t, err)
	assert.Len(t, secrets, 1)
}

func TestSecretValidation(t *testing.T) {
	database := newTestDB(t)
	setTestIdentity(t)

	assert.Error(t, database.SetSecret("", "value"))
	assert.Error(t, database.SetSecret("name", ""))

	_, err := database.GetSecretDecryptedValue("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSetSecret_NoIdentity(t *testing.T) {
	database := newTestDB(t)
	t.Setenv(constants.EnvVarAgeIdentity, "")

	err := database.SetSecret("name", "value")
	assert.ErrorContains(t, err, constants.EnvVarAgeIdentity)
}

func TestDeleteSecret(t *testing.T) {
	database := newTestDB(t)
	setTestIdentity(t)

	require.NoError(t, database.SetSecret("doomed", "value"))

	exists, err := database.SecretExists("doomed")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, database.DeleteSecret("doomed"))

	exists, err = database.SecretExists("doomed")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorContains(t, database.DeleteSecret("doomed"), "not found")
}
