package main_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/locrag"
	main "github.com/fwojciec/locrag/cmd/locrag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports missing store", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "")
		require.NoError(t, (&main.StatusCmd{}).Run(env.deps))
		assert.Equal(t, "No store configured yet.\n", env.stdout.String())
	})

	t.Run("reports current store", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "stores/1")
		require.NoError(t, (&main.StatusCmd{}).Run(env.deps))
		assert.Equal(t, "Store: stores/1 (store ready)\n", env.stdout.String())
	})
}

func TestCreateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("creates and saves store", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/new"), "")
		require.NoError(t, (&main.CreateCmd{}).Run(env.deps))

		assert.Contains(t, env.stdout.String(), "Created store stores/new")
		id, err := env.registry.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "stores/new", id)
	})

	t.Run("warns when store cannot be saved", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/new"), "")
		env.registry.SaveFn = func(context.Context, string) error { return errors.New("disk full") }

		require.NoError(t, (&main.CreateCmd{}).Run(env.deps))
		assert.Contains(t, env.stdout.String(), "Created store stores/new")
		assert.Contains(t, env.stderr.String(), "warning: save store: disk full")
		assert.Equal(t, locrag.StateStoreReady, env.deps.Session.State())
	})

	t.Run("returns remote failure", func(t *testing.T) {
		t.Parallel()

		store := testStore("")
		store.CreateStoreFn = func(context.Context, string) (string, error) {
			return "", errors.New("quota exceeded")
		}
		env := newTestEnv(t, store, "")

		err := (&main.CreateCmd{}).Run(env.deps)
		require.Error(t, err)
		assert.Equal(t, locrag.EREMOTE, locrag.ErrorCode(err))
		assert.Empty(t, env.stdout.String())
	})
}

func TestDocsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists documents", func(t *testing.T) {
		t.Parallel()

		store := testStore("stores/1")
		store.ListDocumentsFn = func(context.Context, string) ([]*locrag.Document, error) {
			return []*locrag.Document{{DisplayName: "policy.md", State: locrag.DocumentStateActive}}, nil
		}
		env := newTestEnv(t, store, "stores/1")

		require.NoError(t, (&main.DocsCmd{}).Run(env.deps))
		assert.Equal(t, "- policy.md (active)\n", env.stdout.String())
	})

	t.Run("requires a store", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "")
		err := (&main.DocsCmd{}).Run(env.deps)
		assert.Equal(t, locrag.ENOSTORE, locrag.ErrorCode(err))
	})
}

func TestResetCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("forgets store without deleting it", func(t *testing.T) {
		t.Parallel()

		store := testStore("stores/1")
		store.DeleteStoreFn = func(context.Context, string) error {
			t.Fatal("remote store must not be deleted")
			return nil
		}
		env := newTestEnv(t, store, "stores/1")

		require.NoError(t, (&main.ResetCmd{}).Run(env.deps))
		assert.Equal(t, locrag.StateNoStore, env.deps.Session.State())
		id, _ := env.registry.Load(context.Background())
		assert.Empty(t, id)
		assert.Contains(t, env.stdout.String(), "Store reset.")
	})

	t.Run("requires force to delete remote store", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, testStore("stores/1"), "stores/1")
		err := (&main.ResetCmd{DeleteRemote: true}).Run(env.deps)

		assert.Equal(t, locrag.EINVALID, locrag.ErrorCode(err))
		assert.Equal(t, "stores/1", env.deps.Session.StoreID())
	})

	t.Run("deletes remote store with force", func(t *testing.T) {
		t.Parallel()

		var deleted string
		store := testStore("stores/1")
		store.DeleteStoreFn = func(_ context.Context, id string) error {
			deleted = id
			return nil
		}
		env := newTestEnv(t, store, "stores/1")

		require.NoError(t, (&main.ResetCmd{DeleteRemote: true, Force: true}).Run(env.deps))
		assert.Equal(t, "stores/1", deleted)
		assert.Contains(t, env.stdout.String(), "Deleted store stores/1")
		assert.Equal(t, locrag.StateNoStore, env.deps.Session.State())
	})

	t.Run("keeps store when remote delete fails", func(t *testing.T) {
		t.Parallel()

		store := testStore("stores/1")
		store.DeleteStoreFn = func(context.Context, string) error { return errors.New("permission denied") }
		env := newTestEnv(t, store, "stores/1")

		err := (&main.ResetCmd{DeleteRemote: true, Force: true}).Run(env.deps)
		assert.Equal(t, locrag.EREMOTE, locrag.ErrorCode(err))
		assert.Equal(t, "stores/1", env.deps.Session.StoreID())
	})
}
