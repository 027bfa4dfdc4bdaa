package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

type action struct {
	Name        string
	Description string
}

var actions = []action{
	{"create", "Create a sample order"},
	{"process", "Move order to PROCESSING"},
	{"ship", "Move order to SHIPPED"},
	{"deliver", "Move order to DELIVERED"},
	{"cancel", "Cancel order"},
	{"get", "Fetch order by id"},
}

var statusByAction = map[string]string{
	"process": "PROCESSING",
	"ship":    "SHIPPED",
	"deliver": "DELIVERED",
	"cancel":  "CANCELLED",
}

type model struct {
	selected int
	orderID  string
	status   string
	busy     bool
}

func initialModel(orderID string) model {
	return model{orderID: orderID, status: "Ready"}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up":
			if m.selected > 0 {
				m.selected--
			}
		case "down":
			if m.selected < len(actions)-1 {
				m.selected++
			}
		case "enter":
			if m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Running..."
			return m, runActionCmd(actions[m.selected].Name, m.orderID)
		}
	case actionResult:
		m.busy = false
		m.status = msg.status
		if msg.orderID != "" {
			m.orderID = msg.orderID
		}
	}
	return m, nil
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintln(b, "pedidos-service CLI")
	fmt.Fprintln(b, "")
	fmt.Fprintln(b, "Actions:")
	for i, a := range actions {
		marker := " "
		if i == m.selected {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %s - %s\n", marker, a.Name, a.Description)
	}
	fmt.Fprintln(b, "")
	if m.orderID != "" {
		fmt.Fprintf(b, "Order: %s\n", m.orderID)
	}
	fmt.Fprintf(b, "Status: %s\n", m.status)
	fmt.Fprintln(b, "\nControls: up/down select action, enter to run, q to quit")
	return b.String()
}

type actionResult struct {
	status  string
	orderID string
}

func runActionCmd(name, orderID string) tea.Cmd {
	return func() tea.Msg {
		baseURL := getenv("ORDER_BASE_URL", "http://localhost:8080")
		switch name {
		case "create":
			id, body, err := doCreate(baseURL)
			if err != nil {
				return actionResult{status: fmt.Sprintf("Create failed: %v", err)}
			}
			return actionResult{status: fmt.Sprintf("Created: %s", body), orderID: id}
		case "get":
			if orderID == "" {
				return actionResult{status: "No order yet, run create first"}
			}
			body, err := doGet(baseURL, orderID)
			if err != nil {
				return actionResult{status: fmt.Sprintf("Get failed: %v", err)}
			}
			return actionResult{status: body}
		default:
			if orderID == "" {
				return actionResult{status: "No order yet, run create first"}
			}
			if err := doUpdateStatus(baseURL, orderID, statusByAction[name]); err != nil {
				return actionResult{status: fmt.Sprintf("Update failed: %v", err)}
			}
			return actionResult{status: fmt.Sprintf("Order is now %s", statusByAction[name])}
		}
	}
}

func doCreate(baseURL string) (string, string, error) {
	payload := map[string]any{
		"customerId":      uuid.NewString(),
		"shippingAddress": "742 Evergreen Terrace",
		"items": []map[string]any{
			{"productId": uuid.NewString(), "productName": "Keyboard", "quantity": 2, "unityPrice": "100.50"},
			{"productId": uuid.NewString(), "productName": "Mouse", "quantity": 3, "unityPrice": "50.00"},
		},
	}
	data, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/orders", bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	body, err := do(req)
	if err != nil {
		return "", "", err
	}
	var resp struct {
		OrderID string `json:"orderId"`
	}
	_ = json.Unmarshal([]byte(body), &resp)
	return resp.OrderID, body, nil
}

func doGet(baseURL, orderID string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/orders/"+orderID, nil)
	if err != nil {
		return "", err
	}
	return do(req)
}

func doUpdateStatus(baseURL, orderID, status string) error {
	data, _ := json.Marshal(map[string]any{"newStatus": status})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, strings.TrimRight(baseURL, "/")+"/orders/"+orderID, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = do(req)
	return err
}

func do(req *http.Request) (string, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return strings.TrimSpace(string(body)), nil
}

func main() {
	runCmd := flag.String("run", "", "run action: create|process|ship|deliver|cancel|get")
	orderID := flag.String("order", "", "order id for status actions")
	flag.Parse()

	if *runCmd != "" {
		res := runActionCmd(*runCmd, *orderID)().(actionResult)
		fmt.Println(res.status)
		if res.orderID != "" {
			fmt.Println("order:", res.orderID)
		}
		return
	}

	p := tea.NewProgram(initialModel(*orderID))
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
