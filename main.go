package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
)

func main() {
	server := flag.String("server", "", "Comma separated list of DCs to connect to, use IP or full hostname - will try autodection if not supplied")
	dnsdomain := flag.String("dnsdomain", "", "Domain to connect to in DNS suffix format - will try autodection if not supplied")
	port := flag.Int("port", 389, "LDAP port to connect to (389 or 636 typical)")
	tlsmodeString := flag.String("tlsmode", "NoTLS", "Transport mode ("+strings.Join(TLSmodeStrings(), ", ")+")")
	ignoreCert := flag.Bool("ignorecert", true, "Disable certificate checks")

	inputname := flag.String("input", "", "File to read usernames from, uses stdin if not supplied and no charset is given")
	outputname := flag.String("output", "", "File to write detected usernames to, uses stdout if not supplied")

	// generated usernames
	charset := flag.String("charset", "", "Generate usernames from these characters instead of reading a list")
	minlength := flag.Int("min", 1, "Shortest generated username (excluding prefix and suffix)")
	maxlength := flag.Int("max", 4, "Longest generated username (excluding prefix and suffix)")
	prefix := flag.String("prefix", "", "Prepend this to every generated username")
	suffix := flag.String("suffix", "", "Append this to every generated username")

	// evasive maneuvers
	throttle := flag.Int("throttle", 0, "Only do a request every N ms, 0 to disable")
	maxrequests := flag.Int("maxrequests", 0, "Disconnect and reconnect a connection after n requests, 0 to disable")

	maxservers := flag.Int("maxservers", 8, "Maximum amount of servers to run in parallel")
	maxstrategy := flag.String("maxstrategy", "fastest", "How to select servers if more are found than wanted (fastest, random)")
	parallel := flag.Int("parallel", 8, "How many connections per server to run in parallel")

	log.Println("LDAP Brute - anonymously bruteforce your way to Active Directory usernames")

	flag.Parse()

	tlsmode, err := TLSmodeString(*tlsmodeString)
	if err != nil {
		log.Fatalf("unknown TLS mode %v", *tlsmodeString)
	}

	if *parallel < 1 {
		log.Fatalf("need at least one connection per server, got parallel %v", *parallel)
	}

	if *inputname != "" && *charset != "" {
		log.Fatal("use either -input or -charset, not both")
	}

	output := os.Stdout
	if *outputname != "" {
		output, err = os.Create(*outputname)
		if err != nil {
			log.Fatalf("Could not create %v: %v", *outputname, err)
		}
	}
	defer output.Close()

	var source candidateSource
	if *charset != "" {
		source, err = NewStringGen(*charset, *minlength, *maxlength, *prefix, *suffix)
		if err != nil {
			log.Fatalf("Invalid generator settings: %v", err)
		}
	} else {
		input := os.Stdin
		if *inputname != "" {
			input, err = os.Open(*inputname)
			if err != nil {
				log.Fatalf("Can't open %v: %v", *inputname, err)
			}
			defer input.Close()
		}
		source, err = newLineSource(input, *inputname != "")
		if err != nil {
			log.Fatalf("Can't read %v: %v", *inputname, err)
		}
	}

	d := dialer{
		port:       *port,
		tlsmode:    tlsmode,
		ignoreCert: *ignoreCert,
	}

	var servers []string
	if *server != "" {
		servers = strings.Split(*server, ",")
	}

	// AUTODETECTION
	if len(servers) == 0 {
		// We only need to auto-detect the domain if the server is not supplied
		if *dnsdomain == "" {
			log.Println("No server supplied, auto-detecting")
			*dnsdomain = detectDomain()
		}
		if *dnsdomain == "" {
			log.Fatal("Domain auto-detection failed")
		}
		log.Printf("Auto-detected DNS domain as %v", *dnsdomain)

		detected, err := lookupDomainControllers(*dnsdomain)
		if err != nil {
			log.Fatalf("AD controller auto-detection failed, use '--server' parameter: %v", err)
		}
		log.Printf("Detected %v Domain Controllers for %v", detected, *dnsdomain)
		if len(detected) > *maxservers {
			log.Printf("Using strategy %v to select %v target servers from %v", *maxstrategy, *maxservers, strings.Join(detected, ", "))
		}

		servers, err = selectServers(detected, *maxservers, *maxstrategy, func(server string) (int, error) {
			return d.bench(server, 2*time.Second)
		})
		if err != nil {
			log.Fatal(err)
		}
		if len(servers) == 0 {
			log.Fatal("AD controller auto-detection failed, use '--server' parameter")
		}
		log.Printf("Using these servers: %v", strings.Join(servers, ", "))
	}
	// END OF AUTODETECTION

	p := &prober{
		connect:     d.connect,
		servers:     servers,
		parallel:    *parallel,
		maxrequests: *maxrequests,
	}
	if *throttle > 0 {
		throttleTimer := time.NewTicker(time.Millisecond * time.Duration(*throttle))
		defer throttleTimer.Stop()
		p.throttle = throttleTimer.C
	}

	var pb *progressbar.ProgressBar
	if total := source.Complexity(); total != 0 {
		pb = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription("Progress"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
		)
	}

	inputqueue := make(chan string, 128)
	outputqueue := make(chan string, 128)
	stop := make(chan struct{})
	written := make(chan struct{})
	readDone := make(chan error, 1)

	go func() {
		defer close(written)
		for username := range outputqueue {
			fmt.Fprintln(output, username)
		}
	}()

	go func() {
		defer close(inputqueue)
		readDone <- queueCandidates(source, inputqueue, stop, pb)
	}()

	err = p.run(inputqueue, outputqueue)
	close(stop)
	close(outputqueue)
	<-written
	readErr := <-readDone

	if err == nil && readErr != nil {
		err = fmt.Errorf("reading usernames: %w", readErr)
	}
	closeProgress(pb, err != nil)
	if err != nil {
		log.Fatalf("Stopped early: %v", err)
	}
}

// closeProgress only draws the bar as complete when the run got through every candidate
func closeProgress(pb *progressbar.ProgressBar, failed bool) {
	if pb == nil {
		return
	}
	if failed {
		pb.Exit()
		return
	}
	pb.Finish()
}
