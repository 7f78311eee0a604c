package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Showmax/go-fqdn"
	"github.com/lkarlslund/ldap/v3"
)

// NetLogon ping without a username, used to check a DC answers at all
const pingFilter = "(&(NtVer=\x06\x00\x00\x00)(AAC=\x10\x00\x00\x00))"

type dialer struct {
	port       int
	tlsmode    TLSmode
	ignoreCert bool
}

func (d dialer) dial(server string) (*ldap.Conn, error) {
	addr := fmt.Sprintf("%s:%d", server, d.port)
	switch d.tlsmode {
	case NoTLS:
		return ldap.Dial("tcp", addr)
	case StartTLS:
		conn, err := ldap.Dial("tcp", addr)
		if err != nil {
			return nil, err
		}
		if err = conn.StartTLS(&tls.Config{ServerName: server, InsecureSkipVerify: d.ignoreCert}); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	case TLS:
		config := &tls.Config{
			ServerName:         server,
			InsecureSkipVerify: d.ignoreCert,
		}
		return ldap.DialTLS("tcp", addr, config)
	}
	return nil, fmt.Errorf("unsupported TLS mode %v", d.tlsmode)
}

// bench counts how many NetLogon pings the server answers within window
func (d dialer) bench(server string, window time.Duration) (int, error) {
	conn, err := d.dial(server)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	var iterations int
	starttime := time.Now()
	for time.Since(starttime) < window {
		request := ldap.NewSearchRequest("",
			ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
			pingFilter,
			[]string{"NetLogon"},
			nil,
		)
		if _, err := conn.Search(request); err != nil {
			return iterations, fmt.Errorf("failed to execute search request: %w", err)
		}
		iterations++
	}
	return iterations, nil
}

func detectDomain() string {
	domain := strings.ToLower(os.Getenv("USERDNSDOMAIN"))
	if domain != "" {
		return domain
	}

	// That didn't work, lets try something else
	f, err := fqdn.FqdnHostname()
	if err == nil && strings.Contains(f, ".") {
		log.Print("No USERDNSDOMAIN set - using machines FQDN as basis")
		return strings.ToLower(f[strings.Index(f, ".")+1:])
	}
	return ""
}

func lookupDomainControllers(domain string) ([]string, error) {
	cname, dservers, err := net.LookupSRV("", "", "_ldap._tcp.dc._msdcs."+domain)
	if err != nil {
		return nil, err
	}
	if cname == "" || len(dservers) == 0 {
		return nil, fmt.Errorf("no domain controllers registered for %v", domain)
	}

	detected := make([]string, len(dservers))
	for i, ds := range dservers {
		detected[i] = strings.TrimRight(ds.Target, ".")
	}
	return detected, nil
}

// selectServers picks at most maxservers of the detected DCs. bench is only called for the "fastest" strategy.
func selectServers(detected []string, maxservers int, strategy string, bench func(server string) (int, error)) ([]string, error) {
	if maxservers < 1 {
		return nil, fmt.Errorf("need at least one server, got maxservers %v", maxservers)
	}
	if len(detected) <= maxservers {
		return detected, nil
	}

	switch strings.ToLower(strategy) {
	case "fastest":
		type benchResult struct {
			server     string
			iterations int
		}
		var benchWG sync.WaitGroup
		var benchLock sync.Mutex
		var benchResults []benchResult

		benchWG.Add(len(detected))
		for _, server := range detected {
			go func(server string) {
				defer benchWG.Done()
				iterations, err := bench(server)
				if err != nil {
					log.Printf("Problem benchmarking %v: %v", server, err)
					return
				}
				benchLock.Lock()
				benchResults = append(benchResults, benchResult{
					server:     server,
					iterations: iterations,
				})
				benchLock.Unlock()
			}(server)
		}
		benchWG.Wait()

		sort.Slice(benchResults, func(i, j int) bool {
			return benchResults[i].iterations > benchResults[j].iterations
		})
		var servers []string
		for i := 0; i < maxservers && i < len(benchResults); i++ {
			servers = append(servers, benchResults[i].server)
		}
		return servers, nil
	case "random":
		servers := make([]string, 0, maxservers)
		for _, i := range rand.Perm(len(detected))[:maxservers] {
			servers = append(servers, detected[i])
		}
		return servers, nil
	}
	return nil, fmt.Errorf("unknown strategy %v", strategy)
}
