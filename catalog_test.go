/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/datastore/testmodels"
)

func TestTypedRepositories(t *testing.T) {
	client := mock.New()

	t.Run("BasicOperations", func(t *testing.T) {
		repos := NewTypedRepositories[*testmodels.User]()

		users := NewRepository[*testmodels.User](client, "test", "users")
		if err := repos.Register(users); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}

		retrieved, err := repos.Get("test", "users")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if retrieved != users {
			t.Fatal("Retrieved a different repository")
		}

		keys := repos.List()
		if len(keys) != 1 || keys[0] != "test.users" {
			t.Fatalf("Expected [test.users], got %v", keys)
		}

		if err := repos.Remove("test", "users"); err != nil {
			t.Fatalf("Failed to remove: %v", err)
		}
		if _, err := repos.Get("test", "users"); err == nil {
			t.Fatal("Expected error after removal")
		}
		if err := repos.Remove("test", "users"); err == nil {
			t.Fatal("Expected error removing twice")
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		repos := NewTypedRepositories[*testmodels.User]()

		if err := repos.Register(NewRepository[*testmodels.User](client, "test", "users")); err != nil {
			t.Fatalf("First registration failed: %v", err)
		}
		if err := repos.Register(NewRepository[*testmodels.User](client, "test", "users")); err == nil {
			t.Fatal("Expected duplicate registration error")
		}
		if err := repos.Register(NewRepository[*testmodels.User](client, "prod", "users")); err != nil {
			t.Fatalf("Same set in another namespace failed: %v", err)
		}
	})
}

func TestCatalog(t *testing.T) {
	client := mock.New()
	c := NewCatalog()

	t.Run("DifferentTypes", func(t *testing.T) {
		if err := RegisterRepository(c, NewRepository[*testmodels.User](client, "test", "users")); err != nil {
			t.Fatalf("Failed to register user repository: %v", err)
		}
		if err := RegisterRepository(c, NewRepository[*testmodels.RatingSystem](client, "test", "ratings")); err != nil {
			t.Fatalf("Failed to register rating repository: %v", err)
		}

		users, err := GetRepository[*testmodels.User](c, "test", "users")
		if err != nil || users == nil {
			t.Fatalf("Failed to get user repository: %v", err)
		}
		if _, err := GetRepository[*testmodels.User](c, "test", "ratings"); err == nil {
			t.Fatal("Expected ratings to be unknown for users")
		}

		if keys := ListRepositories[*testmodels.RatingSystem](c); len(keys) != 1 || keys[0] != "test.ratings" {
			t.Fatalf("Expected [test.ratings], got %v", keys)
		}
	})

	t.Run("SameSetDifferentTypes", func(t *testing.T) {
		if err := RegisterRepository(c, NewRepository[*testmodels.User](client, "test", "items")); err != nil {
			t.Fatalf("Failed to register user items: %v", err)
		}
		if err := RegisterRepository(c, NewRepository[*testmodels.RatingSystem](client, "test", "items")); err != nil {
			t.Fatalf("Failed to register rating items: %v", err)
		}

		if err := RemoveRepository[*testmodels.User](c, "test", "items"); err != nil {
			t.Fatalf("Failed to remove user items: %v", err)
		}
		if _, err := GetRepository[*testmodels.RatingSystem](c, "test", "items"); err != nil {
			t.Fatalf("Rating items should survive: %v", err)
		}
	})
}

func TestCatalogThreadSafety(t *testing.T) {
	c := NewCatalog()
	client := mock.New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			_ = RegisterRepository(c, NewRepository[*testmodels.User](client, "test", fmt.Sprintf("set%d", id)))
		}(i)
		go func() {
			defer wg.Done()
			ListRepositories[*testmodels.User](c)
		}()
	}
	wg.Wait()

	if keys := ListRepositories[*testmodels.User](c); len(keys) != 10 {
		t.Fatalf("Expected 10 repositories, got %d", len(keys))
	}
}
