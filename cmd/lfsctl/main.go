// Command lfsctl drives the lfssim engine: it replays command records,
// generates random workloads, and prints diagnostic dumps, the
// driver/generator/dump roles the engine itself doesn't implement.
package main

func main() {
	Execute()
}
