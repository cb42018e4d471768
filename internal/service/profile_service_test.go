package service

import (
	"context"
	"testing"

	"github.com/Global-Edge-English/anki-connect/internal/domain"
	"github.com/Global-Edge-English/anki-connect/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProfileEnsureDefault(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.Profiles.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultProfileName, p.Name)
	assert.Equal(t, "user_1", p.Slug)

	// 幂等
	require.NoError(t, env.Profiles.EnsureDefault(ctx))
	profiles, err := env.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, profiles, 1)
}

func TestProfileCreateSwitchDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.Profiles.Create(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, "work", p.Slug)

	_, err = env.Profiles.Create(ctx, "Work")
	requireCode(t, err, code.ErrorProfileExists)

	sw, err := env.Profiles.Switch(ctx, "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", sw.Name)

	slug, err := env.Profiles.CurrentSlug(ctx)
	require.NoError(t, err)
	assert.Equal(t, "work", slug)

	// 切回默认档案后删除
	_, err = env.Profiles.Switch(ctx, domain.DefaultProfileName)
	require.NoError(t, err)
	require.NoError(t, env.Profiles.Delete(ctx, "Work"))

	_, err = env.Profiles.Switch(ctx, "Work")
	requireCode(t, err, code.ErrorProfileNotFound)
}

func TestProfileCreateSlugCollision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Profiles.Create(ctx, "Alpha Beta")
	require.NoError(t, err)

	// 不同名称折叠为同一标识时必须拒绝, 否则会共用同一收藏库
	_, err = env.Profiles.Create(ctx, "alpha beta")
	requireCode(t, err, code.ErrorProfileExists)

	_, err = env.Profiles.Create(ctx, "Alpha%Beta")
	requireCode(t, err, code.ErrorProfileExists)

	// 与默认档案 user_1 撞车同样拒绝
	_, err = env.Profiles.Create(ctx, "user_1")
	requireCode(t, err, code.ErrorProfileExists)
}

func TestProfileActiveSurvivesRestart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Profiles.Create(ctx, "Travel")
	require.NoError(t, err)
	_, err = env.Profiles.Switch(ctx, "Travel")
	require.NoError(t, err)

	// 重建服务实例模拟进程重启, 激活档案从注册库恢复
	reborn := NewProfileService(env.ProfileRepo, env.dao, zap.NewNop())
	require.NoError(t, reborn.EnsureDefault(ctx))

	slug, err := reborn.CurrentSlug(ctx)
	require.NoError(t, err)
	assert.Equal(t, "travel", slug)
}

func TestProfileDeleteDefaultRejected(t *testing.T) {
	env := newTestEnv(t)

	err := env.Profiles.Delete(context.Background(), domain.DefaultProfileName)
	requireCode(t, err, code.ErrorProfileProtected)
}

func TestProfileIsolation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addBasicModel(t, "Basic")
	env.addNote(t, "Default", "Basic", "q", "a")

	p, err := env.Profiles.Create(ctx, "Other")
	require.NoError(t, err)

	// 每个档案有独立的收藏库
	names, err := env.Models.Names(ctx, p.Slug)
	require.NoError(t, err)
	assert.Empty(t, names)

	ids, err := env.Notes.Find(ctx, env.profile, "")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}
