package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"gitlab.com/dirk.krummacker/contacts-api/pkg/model"
)

// Usage example on the command line:
// > go run main.go -url=http://localhost:8080
func main() {
	baseURL := flag.String("url", "http://localhost:8080", "the base URL of the contacts service")
	flag.Parse()

	fmt.Println()
	fmt.Println("  Elements      POST       PUT       GET    DELETE ")
	fmt.Println("---------------------------------------------------")
	sizes := []int{1000, 5000, 10000, 50000, 100000}
	jsonBody := []byte(`{
		"name": "Marcus Antonius",
		"email": "marcus@roma.it",
		"address": "Forum Romanum",
		"phone": "+39 999 777 555"
	}`)
	updateBody := []byte(`{"favorite": true}`)
	for _, loops := range sizes {
		fmt.Printf("%10d", loops)
		ids := make([]string, 0, loops)
		{
			// POST requests
			var duration int64
			for i := 0; i < loops; i++ {
				id, d := sendPostRequest(*baseURL, bytes.NewReader(jsonBody))
				ids = append(ids, id)
				duration += d
			}
			fmt.Printf("%10d", duration/int64(loops*1000))
		}
		{
			// PUT requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, http.MethodPut, bytes.NewReader(updateBody))
			}
			callInLoop(ids, f)
		}
		{
			// GET requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, http.MethodGet, nil)
			}
			callInLoop(ids, f)
		}
		{
			// DELETE requests
			f := func(id string) int64 {
				return sendRequestForID(*baseURL, id, http.MethodDelete, nil)
			}
			callInLoop(ids, f)
		}
		fmt.Println()
	}
}

// callInLoop calls f for all ids in random order and prints the average duration in microseconds.
func callInLoop(ids []string, f func(id string) int64) {
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	var duration int64
	for _, id := range shuffled {
		duration += f(id)
	}
	fmt.Printf("%10d", duration/int64(len(ids)*1000))
}

func sendPostRequest(baseURL string, bodyReader io.Reader) (string, int64) {
	resBody, duration := sendRequest(http.MethodPost, baseURL+"/contacts", bodyReader)
	var contact model.Contact
	err := json.Unmarshal(resBody, &contact)
	if err != nil {
		fmt.Println("could not unmarshal JSON", err)
		panic(err)
	}
	return contact.Id, duration
}

func sendRequestForID(baseURL string, id string, method string, bodyReader io.Reader) int64 {
	_, duration := sendRequest(method, baseURL+"/contacts/"+id, bodyReader)
	return duration
}

func sendRequest(method string, requestURL string, bodyReader io.Reader) ([]byte, int64) {
	req, err := http.NewRequest(method, requestURL, bodyReader)
	if err != nil {
		fmt.Println("could not create request", err)
		panic(err)
	}
	req.Header.Set("Content-Type", "application/json")
	before := time.Now().UnixNano()
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Println("error making http request", err)
		panic(err)
	}
	defer res.Body.Close()
	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Println("could not read response body", err)
		panic(err)
	}
	after := time.Now().UnixNano()
	if res.StatusCode != http.StatusOK {
		var message model.Message
		json.Unmarshal(resBody, &message)
		fmt.Printf("\n%s %s answered %d: %s\n", method, requestURL, res.StatusCode, message.Message)
	}
	return resBody, after - before
}
