package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/minesweeper/game/config"
	"github.com/wricardo/mcp-training/minesweeper/game/service"
)

// Run with -race: reads through the service touch the access time and
// write the session through to disk.
func TestGameService_ConcurrentReadsWithFileStore(t *testing.T) {
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	configs, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	svc := service.NewGameService(NewManagerWithPersistence(persistence), configs)

	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "beginner")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	id := info.ID

	var wg sync.WaitGroup
	errs := make(chan error, 8*50)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				var err error
				switch (g + i) % 4 {
				case 0:
					_, err = svc.GetSession(ctx, id)
				case 1:
					_, err = svc.GetGameState(ctx, id)
				case 2:
					_, err = svc.ListSessions(ctx)
				case 3:
					_, err = svc.Mark(ctx, id, 0, 0)
				}
				if err != nil {
					errs <- err
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != sessionFileExt {
			t.Errorf("Expected only session files, found %s", entry.Name())
		}
	}
}

func TestFilePersistence_ConcurrentSaves(t *testing.T) {
	dir := t.TempDir()
	persistence, err := NewFilePersistence(dir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	s := newPlayedSession(t, "shared")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := persistence.Save(s); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Concurrent save failed: %v", err)
	}

	ids, err := persistence.ListAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "shared" {
		t.Errorf("Expected only [shared], got %v", ids)
	}
	if _, err := persistence.Load("shared"); err != nil {
		t.Errorf("Expected saved session to load, got %v", err)
	}
}
