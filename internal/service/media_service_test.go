package service

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaStoreRetrieveRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload := []byte("hello media")
	encoded := base64.StdEncoding.EncodeToString(payload)

	name, err := env.Media.Store(ctx, env.profile, "greeting.txt", encoded)
	require.NoError(t, err)
	assert.Equal(t, "greeting.txt", name)

	got, err := env.Media.Retrieve(ctx, env.profile, "greeting.txt")
	require.NoError(t, err)
	assert.Equal(t, encoded, got)
}

func TestMediaStoreBadBase64(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Media.Store(context.Background(), env.profile, "x.bin", "not base64 !!!")
	requireCode(t, err, code.ErrorMediaEncoding)
}

func TestMediaStoreFromPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(src, []byte("audio bytes"), 0o644))

	require.NoError(t, env.Media.StoreFromPath(ctx, env.profile, "clip.mp3", src))

	got, err := env.Media.Retrieve(ctx, env.profile, "clip.mp3")
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("audio bytes")), got)

	err = env.Media.StoreFromPath(ctx, env.profile, "gone.mp3", filepath.Join(t.TempDir(), "missing.mp3"))
	requireCode(t, err, code.ErrorMediaNotFound)

	err = env.Media.StoreFromPath(ctx, env.profile, "dir.bin", t.TempDir())
	requireCode(t, err, code.ErrorInvalidParams)
}

func TestMediaStoreRejectsTraversal(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Media.Store(context.Background(), env.profile, "../escape.txt", "")
	requireCode(t, err, code.ErrorInvalidParams)
}

func TestMediaRetrieveMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.Media.Retrieve(context.Background(), env.profile, "nope.png")
	requireCode(t, err, code.ErrorMediaNotFound)
}

func TestMediaDeleteAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Media.Store(ctx, env.profile, "a.txt", base64.StdEncoding.EncodeToString([]byte("a")))
	require.NoError(t, err)
	_, err = env.Media.Store(ctx, env.profile, "b.txt", base64.StdEncoding.EncodeToString([]byte("bb")))
	require.NoError(t, err)

	files, err := env.Media.List(ctx, env.profile)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Name)
	assert.Equal(t, int64(1), files[0].Size)
	assert.Equal(t, "b.txt", files[1].Name)

	require.NoError(t, env.Media.Delete(ctx, env.profile, "a.txt"))

	err = env.Media.Delete(ctx, env.profile, "a.txt")
	requireCode(t, err, code.ErrorMediaNotFound)

	files, err = env.Media.List(ctx, env.profile)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "b.txt", files[0].Name)
}
