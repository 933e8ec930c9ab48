// lyractl - control client for the lyrad input daemon.
//
//	lyractl status              Show daemon status
//	lyractl get                 List tunable attributes
//	lyractl set <attr> <value>  Set a tunable attribute
//	lyractl ping                Check daemon responsiveness
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"

	"lyrad/internal/config"
	"lyrad/internal/ipc"
)

func main() {
	socket := flag.String("socket", config.DefaultSocketPath(), "Daemon control socket")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(1)
	}

	client, err := ipc.Dial(*socket)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lyractl: %v\n", err)
		fmt.Fprintln(os.Stderr, "Is lyrad running?")
		os.Exit(1)
	}
	defer client.Close()

	var cmdErr error
	switch cmd := flag.Arg(0); cmd {
	case "status":
		cmdErr = cmdStatus(client)
	case "get":
		cmdErr = cmdGet(client)
	case "set":
		cmdErr = cmdSet(client, flag.Args()[1:])
	case "ping":
		cmdErr = cmdPing(client)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if cmdErr != nil {
		fmt.Fprintf(os.Stderr, "lyractl: %v\n", cmdErr)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `lyractl - control the lyrad input daemon

USAGE:
    lyractl [-socket path] <command>

COMMANDS:
    status              Show daemon status
    get                 List tunable attributes
    set <attr> <value>  Set a tunable attribute
    ping                Check daemon responsiveness

ATTRIBUTES:
    mouse_speed_x       Pointer X speed in percent (10-500)
    mouse_speed_y       Pointer Y speed in percent (10-500)
    poll_interval_ms    Poll interval in milliseconds (5-100)`)
}

func cmdStatus(c *ipc.Client) error {
	st, err := c.Status()
	if err != nil {
		return err
	}

	state := "paused"
	if st.Polling {
		state = "polling"
	}

	fmt.Printf("Version:        %s\n", st.Version)
	fmt.Printf("State:          %s\n", state)
	fmt.Printf("Uptime:         %ds\n", st.UptimeSeconds)
	fmt.Printf("Device:         %s\n", st.Device)
	fmt.Printf("Mouse speed:    %d%% x, %d%% y\n", st.MouseSpeedX, st.MouseSpeedY)
	fmt.Printf("Poll interval:  %dms\n", st.PollIntervalMs)
	return nil
}

func cmdGet(c *ipc.Client) error {
	attrs, err := c.GetAttrs()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s = %d\n", name, attrs[name])
	}
	return nil
}

func cmdSet(c *ipc.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: lyractl set <attr> <value>")
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("value must be an integer: %q", args[1])
	}

	if err := c.SetAttr(args[0], value); err != nil {
		return err
	}
	fmt.Printf("%s = %d\n", args[0], value)
	return nil
}

func cmdPing(c *ipc.Client) error {
	if err := c.Ping(); err != nil {
		return err
	}
	fmt.Println("pong")
	return nil
}
