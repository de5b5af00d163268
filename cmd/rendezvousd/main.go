// Command rendezvousd runs the UDP rendezvous relay daemon.
package main

import "github.com/rendezvous-relay/rendezvous/cmd/rendezvousd/commands"

func main() {
	commands.Execute()
}
