// orderctl is a small command-line client for the matchcore HTTP façade,
// adapted from the teacher's TCP order-placement client: same flag-driven
// "place one or more orders, then show me the book" shape, now speaking
// the engine's JSON submission and book-query contracts instead of a
// binary wire protocol.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func main() {
	serverAddr := flag.String("server", "http://127.0.0.1:8080", "Base URL of the matchcore HTTP façade")
	owner := flag.String("owner", "", "Client identifier sent as X-Client-Id")
	action := flag.String("action", "place", "Action to perform: ['place', 'book', 'bbo', 'stats']")

	symbol := flag.String("symbol", "AAPL", "Trading symbol")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	typeStr := flag.String("type", "limit", "Order type: 'limit', 'market', 'ioc', or 'fok'")
	price := flag.String("price", "", "Limit price (decimal string; omit for market orders)")
	qtyStr := flag.String("qty", "10", "Quantity or comma-separated list (e.g. 10,20,50)")
	depth := flag.Int("depth", 10, "Book depth for the 'book' action")

	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	switch strings.ToLower(*action) {
	case "place":
		for _, qty := range parseQuantities(*qtyStr) {
			resp, err := placeOrder(client, *serverAddr, *owner, *symbol, *sideStr, *typeStr, *price, qty)
			if err != nil {
				log.Printf("failed to place order (qty %s): %v", qty, err)
				continue
			}
			fmt.Printf("-> %s %s %s %s: status=%s trades=%d remaining=%s\n",
				strings.ToUpper(*sideStr), qty, *symbol, *typeStr,
				resp.Status, len(resp.Trades), resp.RemainingQuantity)
		}
	case "book":
		printBook(client, *serverAddr, *symbol, *depth)
	case "bbo":
		printBBO(client, *serverAddr, *symbol)
	case "stats":
		printStats(client, *serverAddr)
	default:
		log.Fatalf("unknown action: %s", *action)
	}
}

func parseQuantities(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			log.Printf("warning: invalid quantity %q, skipping", p)
			continue
		}
		out = append(out, p)
	}
	return out
}

type orderRequest struct {
	Symbol    string `json:"symbol"`
	OrderType string `json:"order_type"`
	Side      string `json:"side"`
	Quantity  string `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

type tradeView struct {
	TradeID       uint64 `json:"trade_id"`
	Price         string `json:"price"`
	Quantity      string `json:"quantity"`
	AggressorSide string `json:"aggressor_side"`
}

type orderResponse struct {
	Status            string      `json:"status"`
	OrderID           string      `json:"order_id"`
	Sequence          uint64      `json:"sequence"`
	Trades            []tradeView `json:"trades"`
	RemainingQuantity string      `json:"remaining_quantity"`
	Reason            string      `json:"reason,omitempty"`
}

func placeOrder(client *http.Client, base, owner, symbol, side, orderType, price, qty string) (*orderResponse, error) {
	req := orderRequest{Symbol: symbol, OrderType: orderType, Side: side, Quantity: qty, Price: price}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, base+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if owner != "" {
		httpReq.Header.Set("X-Client-Id", owner)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func printBook(client *http.Client, base, symbol string, depth int) {
	url := fmt.Sprintf("%s/v1/books/%s?depth=%d", base, symbol, depth)
	body, err := get(client, url)
	if err != nil {
		log.Fatalf("book query failed: %v", err)
	}
	fmt.Println(string(body))
}

func printBBO(client *http.Client, base, symbol string) {
	body, err := get(client, fmt.Sprintf("%s/v1/bbo/%s", base, symbol))
	if err != nil {
		log.Fatalf("bbo query failed: %v", err)
	}
	fmt.Println(string(body))
}

func printStats(client *http.Client, base string) {
	body, err := get(client, base+"/v1/stats")
	if err != nil {
		log.Fatalf("stats query failed: %v", err)
	}
	fmt.Println(string(body))
}

func get(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
