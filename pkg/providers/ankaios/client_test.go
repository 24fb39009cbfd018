package ankaios

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/rekby/fixenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeControlSocket is a test-scoped fixenv fixture standing up one fake
// Ankaios control socket, torn down with the test. It answers the
// minimal request/response protocol UnixSocketClient speaks, backed by
// an in-memory workload table the test can seed and inspect.
type fakeControlSocket struct {
	path      string
	workloads map[string]Workload
	applied   []string
	deleted   []string
}

func fakeAnkaiosSocket(env fixenv.Env) *fakeControlSocket {
	return fixenv.CacheResult(env, func() (*fixenv.GenericResult[*fakeControlSocket], error) {
		dir, err := os.MkdirTemp("", "ankaios-fake-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}

		sock := &fakeControlSocket{
			path:      filepath.Join(dir, "control.sock"),
			workloads: make(map[string]Workload),
		}

		listener, err := net.Listen("unix", sock.path)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on fake control socket: %w", err)
		}

		go sock.serve(listener)

		return fixenv.NewGenericResultWithCleanup(sock, func() {
			_ = listener.Close()
			_ = os.RemoveAll(dir)
		}), nil
	})
}

func (s *fakeControlSocket) serve(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *fakeControlSocket) handleConn(conn net.Conn) {
	defer conn.Close()
	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}

		var req request
		if err := json.Unmarshal(line, &req); err != nil {
			return
		}

		resp := s.handle(req)
		encoded, err := json.Marshal(resp)
		if err != nil {
			return
		}
		if _, err := conn.Write(append(encoded, '\n')); err != nil {
			return
		}
	}
}

func (s *fakeControlSocket) handle(req request) response {
	switch req.Op {
	case "get_state":
		return response{State: &State{Workloads: s.workloads}}
	case "apply_workload":
		s.workloads[req.Name] = *req.Workload
		s.applied = append(s.applied, req.Name)
		return response{}
	case "delete_workload":
		delete(s.workloads, req.Name)
		s.deleted = append(s.deleted, req.Name)
		return response{}
	default:
		return response{Error: fmt.Sprintf("unknown op %q", req.Op)}
	}
}

func TestUnixSocketClient_GetStateRoundTrip(t *testing.T) {
	env := fixenv.New(t)
	sock := fakeAnkaiosSocket(env)
	sock.workloads["web"] = Workload{Agent: "agent_A", Runtime: "podman", RestartPolicy: "NEVER", RuntimeConfig: "cfg"}

	client, err := Dial(context.Background(), sock.path)
	require.NoError(t, err)
	defer client.Close()

	state, err := client.GetState(context.Background(), []string{"workloadStates", "workloads"})
	require.NoError(t, err)
	assert.Equal(t, sock.workloads["web"], state.Workloads["web"])
}

func TestUnixSocketClient_ApplyAndDeleteWorkload(t *testing.T) {
	env := fixenv.New(t)
	sock := fakeAnkaiosSocket(env)

	client, err := Dial(context.Background(), sock.path)
	require.NoError(t, err)
	defer client.Close()

	workload := Workload{Agent: "agent_B", Runtime: "podman", RestartPolicy: "ALWAYS", RuntimeConfig: ""}
	require.NoError(t, client.ApplyWorkload(context.Background(), "db", workload))
	assert.Contains(t, sock.applied, "db")
	assert.Equal(t, workload, sock.workloads["db"])

	require.NoError(t, client.DeleteWorkload(context.Background(), "db"))
	assert.Contains(t, sock.deleted, "db")
	_, ok := sock.workloads["db"]
	assert.False(t, ok)
}

func TestDial_ConnectionRefused(t *testing.T) {
	_, err := Dial(context.Background(), filepath.Join(t.TempDir(), "nobody-listening.sock"))
	assert.Error(t, err)
}
