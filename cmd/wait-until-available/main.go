package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"
)

// Polls the health endpoint until the service and its database are up.
//
// Usage example on the command line:
// > go run main.go -url=http://localhost:8080/health
func main() {
	url := flag.String("url", "http://localhost:8080/health", "the health endpoint to poll")
	flag.Parse()

	totalWaitTime := 0
	for {
		res, err := http.Get(*url)
		if err == nil {
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				fmt.Println(res)
				break
			} else {
				fmt.Println(res)
			}
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
