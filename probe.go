package main

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lkarlslund/ldap/v3"
)

// LDAP result code for a NetLogon ping that the DC refused to answer
const resultNoResponse = 201

type session interface {
	Search(request *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close()
}

type ldapSession struct {
	conn *ldap.Conn
}

func (s ldapSession) Search(request *ldap.SearchRequest) (*ldap.SearchResult, error) {
	return s.conn.Search(request)
}

func (s ldapSession) Close() {
	s.conn.Close()
}

func (d dialer) connect(server string) (session, error) {
	conn, err := d.dial(server)
	if err != nil {
		return nil, err
	}
	return ldapSession{conn: conn}, nil
}

func netlogonFilter(username string) string {
	return "(&(NtVer=\x06\x00\x00\x00)(AAC=\x10\x00\x00\x00)(User=" + username + "))"
}

// isUserFound checks the NetLogon response opcode, 0x17 is LOGON_SAM_USER_RESPONSE_EX
func isUserFound(res []byte) bool {
	return len(res) > 2 && res[0] == 0x17 && res[1] == 0x00
}

func netlogonResponse(response *ldap.SearchResult) []byte {
	if response == nil || len(response.Entries) == 0 {
		return nil
	}
	attrs := response.Entries[0].Attributes
	if len(attrs) == 0 || len(attrs[0].ByteValues) == 0 {
		return nil
	}
	return attrs[0].ByteValues[0]
}

type prober struct {
	connect func(server string) (session, error)

	servers  []string
	parallel int

	throttle    <-chan time.Time // nil disables throttling
	maxrequests int              // 0 disables reconnects

	connectMutex sync.Mutex
	connectError error
}

// run probes every candidate until the channel is closed, sending confirmed usernames to found.
// It returns the first connection error, after which no new connections are made.
func (p *prober) run(candidates <-chan string, found chan<- string) error {
	if p.parallel < 1 {
		return fmt.Errorf("need at least one connection per server, got parallel %v", p.parallel)
	}

	var jobs sync.WaitGroup
	jobs.Add(p.parallel * len(p.servers))
	for _, server := range p.servers {
		for i := 0; i < p.parallel; i++ {
			go func(server string) {
				defer jobs.Done()
				p.work(server, candidates, found)
			}(server)
		}
	}
	jobs.Wait()

	p.connectMutex.Lock()
	defer p.connectMutex.Unlock()
	return p.connectError
}

func (p *prober) open(server string) session {
	p.connectMutex.Lock()
	defer p.connectMutex.Unlock()
	if p.connectError != nil {
		return nil
	}

	conn, err := p.connect(server)
	if err != nil {
		log.Printf("Problem connecting to LDAP %v server: %v", server, err)
		p.connectError = err
		return nil
	}
	return conn
}

func (p *prober) work(server string, candidates <-chan string, found chan<- string) {
	var requests int
	for {
		conn := p.open(server)
		if conn == nil {
			return
		}

		reconnect := false
		for username := range candidates {
			if p.throttle != nil {
				<-p.throttle
			}

			request := ldap.NewSearchRequest(
				"", // The base dn to search
				ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
				netlogonFilter(username),
				[]string{"NetLogon"},
				nil,
			)
			response, err := conn.Search(request)
			if err != nil {
				var lerr *ldap.Error
				if !errors.As(err, &lerr) || lerr.ResultCode != resultNoResponse {
					log.Printf("failed to execute search request: %v", err)
				}
				continue
			}

			if isUserFound(netlogonResponse(response)) {
				found <- username
			}

			// Should we start a new connection to avoid detection
			requests++
			if p.maxrequests != 0 && requests == p.maxrequests {
				requests = 0
				reconnect = true
				break
			}
		}
		conn.Close()

		if !reconnect {
			// No more input in channel, bye bye from this worker
			return
		}
	}
}
