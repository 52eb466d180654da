package simulator

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// login loads the persisted worker identity, registering with the dispatcher
// first if this installation was never registered. Registration happens at
// most once per installation: a non-empty identity file is trusted without
// asking the dispatcher again, and the file is never rewritten.
func (s *Simulator) login(ctx context.Context) (string, error) {
	data, err := os.ReadFile(s.identityFile)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read identity file: %w", err)
	}

	id := strings.TrimSpace(string(data))
	if id == "" {
		s.logger.Info().Msg("worker is not registered yet")
		s.logger.Info().Msg("registering with dispatcher")

		id, err = s.dispatcher.Register(ctx)
		if err != nil {
			return "", fmt.Errorf("registration failed: %w", err)
		}

		if err := os.WriteFile(s.identityFile, []byte(id), 0644); err != nil {
			return "", fmt.Errorf("failed to persist identity: %w", err)
		}
		s.logger.Info().Str("worker_id", id).Msg("registered")
	}

	s.update(func(st *Status) { st.WorkerID = id })
	s.logger.Info().Str("worker_id", id).Msg("logged in")
	return id, nil
}
