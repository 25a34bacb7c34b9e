package session

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(store Store) *Session {
	return New(store, Options{Now: func() time.Time { return fixedNow }})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func TestSession_SetAndToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := newTestSession(store)

	assert.False(t, s.HasToken())
	require.NoError(t, s.Set(ctx, "opaque-token"))

	assert.Equal(t, "opaque-token", s.Token())
	assert.Equal(t, fixedNow.Add(DefaultTTL), s.ExpiresAt())

	rec, err := store.Load(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "opaque-token", rec.Token)
	assert.Equal(t, fixedNow, rec.IssuedAt)
}

func TestSession_SetEmptyToken(t *testing.T) {
	s := newTestSession(NewMemoryStore())
	assert.Error(t, s.Set(context.Background(), ""))
}

func TestSession_JWTExpiryShortensLifetime(t *testing.T) {
	s := newTestSession(NewMemoryStore())
	exp := fixedNow.Add(2 * time.Hour).Truncate(time.Second)

	require.NoError(t, s.Set(context.Background(), signedToken(t, exp)))
	assert.True(t, s.ExpiresAt().Equal(exp))
}

func TestSession_JWTExpiryNeverExtendsLifetime(t *testing.T) {
	s := newTestSession(NewMemoryStore())
	exp := fixedNow.Add(30 * 24 * time.Hour)

	require.NoError(t, s.Set(context.Background(), signedToken(t, exp)))
	assert.Equal(t, fixedNow.Add(DefaultTTL), s.ExpiresAt())
}

func TestSession_Init_RestoresPersisted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, DefaultKey, &Record{
		Token:     "persisted",
		IssuedAt:  fixedNow.Add(-time.Hour),
		ExpiresAt: fixedNow.Add(time.Hour),
	}))

	s := newTestSession(store)
	require.NoError(t, s.Init(ctx))
	assert.Equal(t, "persisted", s.Token())
}

func TestSession_Init_DropsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, DefaultKey, &Record{
		Token:     "stale",
		ExpiresAt: fixedNow.Add(-time.Minute),
	}))

	s := newTestSession(store)
	require.NoError(t, s.Init(ctx))
	assert.False(t, s.HasToken())

	_, err := store.Load(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSession_Init_Empty(t *testing.T) {
	s := newTestSession(NewMemoryStore())
	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, "", s.Token())
}

func TestSession_TokenExpiresWhileHeld(t *testing.T) {
	now := fixedNow
	s := New(NewMemoryStore(), Options{TTL: time.Hour, Now: func() time.Time { return now }})
	require.NoError(t, s.Set(context.Background(), "short"))

	assert.True(t, s.HasToken())
	now = now.Add(time.Hour)
	assert.False(t, s.HasToken())
}

func TestSession_ClearAndLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := newTestSession(store)

	require.NoError(t, s.Set(ctx, "a"))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, s.HasToken())
	_, err := store.Load(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNoToken)

	require.NoError(t, s.Set(ctx, "b"))
	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.HasToken())
	assert.True(t, s.ExpiresAt().IsZero())
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Delete(context.Context, string) error { return errors.New("disk full") }

func TestSession_ClearDropsMemoryEvenIfStoreFails(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: *NewMemoryStore()}
	s := newTestSession(store)

	require.NoError(t, s.Set(ctx, "a"))
	assert.Error(t, s.Clear(ctx))
	assert.False(t, s.HasToken())
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := NewFileStore(path)

	_, err := store.Load(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNoToken)

	rec := &Record{Token: "tok", IssuedAt: fixedNow, ExpiresAt: fixedNow.Add(DefaultTTL)}
	require.NoError(t, store.Save(ctx, DefaultKey, rec))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second store on the same file sees the token, like a cookie jar
	got, err := NewFileStore(path).Load(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.True(t, got.ExpiresAt.Equal(rec.ExpiresAt))

	require.NoError(t, store.Delete(ctx, DefaultKey))
	_, err = store.Load(ctx, DefaultKey)
	assert.ErrorIs(t, err, ErrNoToken)

	// Deleting a missing key is a no-op
	assert.NoError(t, store.Delete(ctx, DefaultKey))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStore(path).Load(context.Background(), DefaultKey)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)
}

func TestRedisStore_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "")

	rec := Record{Token: "tok", IssuedAt: fixedNow, ExpiresAt: fixedNow.Add(time.Hour)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectGet("glownatura:session:auth_token").SetVal(string(data))
	got, err := store.Load(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	mock.ExpectGet("glownatura:session:auth_token").RedisNil()
	_, err = store.Load(context.Background(), DefaultKey)
	assert.ErrorIs(t, err, ErrNoToken)

	mock.ExpectGet("glownatura:session:auth_token").SetErr(errors.New("connection reset"))
	_, err = store.Load(context.Background(), DefaultKey)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoToken)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SaveUsesExpiryAsTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "test:")
	store.now = func() time.Time { return fixedNow }

	rec := &Record{Token: "tok", IssuedAt: fixedNow, ExpiresAt: fixedNow.Add(DefaultTTL)}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	mock.ExpectSet("test:auth_token", data, DefaultTTL).SetVal("OK")
	require.NoError(t, store.Save(context.Background(), DefaultKey, rec))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_SaveExpiredDeletes(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "test:")
	store.now = func() time.Time { return fixedNow }

	mock.ExpectDel("test:auth_token").SetVal(1)
	rec := &Record{Token: "tok", ExpiresAt: fixedNow.Add(-time.Second)}
	require.NoError(t, store.Save(context.Background(), DefaultKey, rec))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisStore(db, "test:")

	mock.ExpectDel("test:auth_token").SetVal(1)
	require.NoError(t, store.Delete(context.Background(), DefaultKey))

	mock.ExpectDel("test:auth_token").SetErr(errors.New("down"))
	assert.Error(t, store.Delete(context.Background(), DefaultKey))

	assert.NoError(t, mock.ExpectationsWereMet())
}
