package main

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/lkarlslund/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDC struct {
	mu       sync.Mutex
	users    map[string]bool
	refused  map[string]bool
	opened   int
	closed   int
	searches int
}

type fakeSession struct {
	dc *fakeDC
}

func (s fakeSession) Search(request *ldap.SearchRequest) (*ldap.SearchResult, error) {
	s.dc.mu.Lock()
	defer s.dc.mu.Unlock()
	s.dc.searches++

	username := strings.TrimSuffix(strings.TrimPrefix(request.Filter, netlogonFilter("")[:len(netlogonFilter(""))-2]), "))")
	if s.dc.refused[username] {
		return nil, &ldap.Error{ResultCode: resultNoResponse, Err: errors.New("no response")}
	}

	opcode := []byte{0x19, 0x00, 0x01} // LOGON_SAM_USER_UNKNOWN_EX
	if s.dc.users[username] {
		opcode = []byte{0x17, 0x00, 0x01}
	}
	return &ldap.SearchResult{
		Entries: []*ldap.Entry{{
			Attributes: []*ldap.EntryAttribute{{Name: "NetLogon", ByteValues: [][]byte{opcode}}},
		}},
	}, nil
}

func (s fakeSession) Close() {
	s.dc.mu.Lock()
	s.dc.closed++
	s.dc.mu.Unlock()
}

func (dc *fakeDC) connect(server string) (session, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.opened++
	return fakeSession{dc: dc}, nil
}

func feed(names ...string) <-chan string {
	ch := make(chan string, len(names))
	for _, name := range names {
		ch <- name
	}
	close(ch)
	return ch
}

func collect(t *testing.T, p *prober, candidates <-chan string) ([]string, error) {
	t.Helper()
	found := make(chan string, 128)
	err := p.run(candidates, found)
	close(found)

	var out []string
	for name := range found {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, err
}

func TestNetlogonFilter(t *testing.T) {
	assert.Equal(t, "(&(NtVer=\x06\x00\x00\x00)(AAC=\x10\x00\x00\x00)(User=guest))", netlogonFilter("guest"))
}

func TestIsUserFound(t *testing.T) {
	assert.True(t, isUserFound([]byte{0x17, 0x00, 0x05}))
	assert.False(t, isUserFound([]byte{0x17, 0x00}))
	assert.False(t, isUserFound([]byte{0x19, 0x00, 0x05}))
	assert.False(t, isUserFound(nil))
}

func TestNetlogonResponse(t *testing.T) {
	assert.Nil(t, netlogonResponse(nil))
	assert.Nil(t, netlogonResponse(&ldap.SearchResult{}))
	assert.Nil(t, netlogonResponse(&ldap.SearchResult{Entries: []*ldap.Entry{{}}}))
	assert.Equal(t, []byte{1}, netlogonResponse(&ldap.SearchResult{
		Entries: []*ldap.Entry{{Attributes: []*ldap.EntryAttribute{{ByteValues: [][]byte{{1}}}}}},
	}))
}

func TestProberFindsUsers(t *testing.T) {
	dc := &fakeDC{
		users:   map[string]bool{"administrator": true, "krbtgt": true},
		refused: map[string]bool{"flaky": true},
	}
	p := &prober{
		connect:  dc.connect,
		servers:  []string{"dc1", "dc2"},
		parallel: 3,
	}

	found, err := collect(t, p, feed("administrator", "guest", "flaky", "krbtgt", "nobody"))
	require.NoError(t, err)
	assert.Equal(t, []string{"administrator", "krbtgt"}, found)
	assert.Equal(t, 5, dc.searches)
	assert.Equal(t, 6, dc.opened)
	assert.Equal(t, dc.opened, dc.closed)
}

func TestProberReconnects(t *testing.T) {
	dc := &fakeDC{users: map[string]bool{}}
	p := &prober{
		connect:     dc.connect,
		servers:     []string{"dc1"},
		parallel:    1,
		maxrequests: 2,
	}

	_, err := collect(t, p, feed("a", "b", "c", "d", "e"))
	require.NoError(t, err)
	// reconnects after b and d, the last connection sees e and then the closed channel
	assert.Equal(t, 3, dc.opened)
	assert.Equal(t, 3, dc.closed)
}

func TestProberConnectError(t *testing.T) {
	var attempts int
	var mu sync.Mutex
	p := &prober{
		connect: func(server string) (session, error) {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			return nil, errors.New("connection refused")
		},
		servers:  []string{"dc1", "dc2"},
		parallel: 4,
	}

	candidates := make(chan string)
	found, err := collect(t, p, candidates)
	require.EqualError(t, err, "connection refused")
	assert.Empty(t, found)
	assert.Equal(t, 1, attempts)
}

func TestProberWithGeneratedNames(t *testing.T) {
	dc := &fakeDC{users: map[string]bool{"svc_ba": true, "svc_c": true}}
	p := &prober{
		connect:  dc.connect,
		servers:  []string{"dc1"},
		parallel: 2,
	}

	sg, err := NewStringGen("abc", 1, 2, "svc_", "")
	require.NoError(t, err)

	names := make(chan string, sg.Complexity())
	for sg.Next() {
		names <- sg.String()
	}
	close(names)

	found, err := collect(t, p, names)
	require.NoError(t, err)
	assert.Equal(t, []string{"svc_ba", "svc_c"}, found)
	assert.Equal(t, 12, dc.searches)
}

func TestProberNeedsParallel(t *testing.T) {
	for _, parallel := range []int{0, -1} {
		dc := &fakeDC{}
		p := &prober{
			connect:  dc.connect,
			servers:  []string{"dc1"},
			parallel: parallel,
		}
		_, err := collect(t, p, feed("administrator"))
		assert.Error(t, err, "parallel %d", parallel)
		assert.Zero(t, dc.opened)
	}
}
