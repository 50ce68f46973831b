package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ldimov09/mocksys-tui/internal/session"
)

// Login authenticates with account number and password. The returned user
// carries the bearer token for subsequent requests.
func (c *Client) Login(ctx context.Context, accountNumber, password string) (session.User, error) {
	body := map[string]string{
		"account_number": accountNumber,
		"password":       password,
	}
	var out struct {
		User session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", body, &out); err != nil {
		return session.User{}, err
	}
	return out.User, nil
}

// RegistrationForm is the full three-step registration payload.
type RegistrationForm struct {
	UserName         string `json:"user_name"`
	UserUsername     string `json:"user_username"`
	UserPassword     string `json:"user_password"`
	BusinessName     string `json:"business_name"`
	BusinessUsername string `json:"business_username"`
	BusinessPassword string `json:"business_password"`
	ManagerName      string `json:"manager_name"`
	CompanyName      string `json:"company_name"`
	CompanyAddress   string `json:"company_address"`
	LegalForm        string `json:"legal_form"`
}

// RegisterFull submits the registration wizard and returns the freshly
// logged-in user.
func (c *Client) RegisterFull(ctx context.Context, form RegistrationForm) (session.User, error) {
	var out struct {
		User session.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/register/full", form, &out); err != nil {
		return session.User{}, err
	}
	return out.User, nil
}

// User resolves an account number to its public user record. Used by the
// transfer preview and to refresh the session after company changes.
func (c *Client) User(ctx context.Context, accountNumber string) (session.User, error) {
	var out struct {
		Data session.User `json:"data"`
	}
	path := "/api/users/" + pathEscape(accountNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return session.User{}, err
	}
	return out.Data, nil
}

// TransferReceipt is the commit response. Balance is nil when the backend
// did not include one.
type TransferReceipt struct {
	Balance *decimal.Decimal `json:"balance"`
}

// Transfer commits a transfer to the receiver account. Amount is sent as a
// JSON number, matching the wire contract.
func (c *Client) Transfer(ctx context.Context, receiverAccount, pin string, amount decimal.Decimal) (TransferReceipt, error) {
	body := map[string]any{
		"receiver_account": receiverAccount,
		"pin":              pin,
		"amount":           amount.InexactFloat64(),
	}
	var out TransferReceipt
	if err := c.do(ctx, http.MethodPost, "/api/transfer", body, &out); err != nil {
		return TransferReceipt{}, err
	}
	return out, nil
}

// TransferRecord is one row of the transfer history.
type TransferRecord struct {
	ID        int64           `json:"id"`
	Type      string          `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
	Error     string          `json:"error,omitempty"`
}

// TransferHistory splits the last 30 days by direction.
type TransferHistory struct {
	AsReceiver []TransferRecord `json:"asReceiver"`
	AsSender   []TransferRecord `json:"asSender"`
}

// Transfers fetches the account's recent transfer history.
func (c *Client) Transfers(ctx context.Context) (TransferHistory, error) {
	var out struct {
		Data TransferHistory `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/transfers", nil, &out); err != nil {
		return TransferHistory{}, err
	}
	return out.Data, nil
}

// Item is a sellable item of a business account.
type Item struct {
	ID        int64           `json:"id,omitempty"`
	Name      string          `json:"name"`
	ShortName string          `json:"short_name"`
	Price     decimal.Decimal `json:"price"`
	Number    decimal.Decimal `json:"number"`
	Unit      string          `json:"unit"`
}

// Items lists the account's items.
func (c *Client) Items(ctx context.Context) ([]Item, error) {
	var out []Item
	if err := c.do(ctx, http.MethodGet, "/api/items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveItem creates the item when it has no ID, updates it otherwise.
func (c *Client) SaveItem(ctx context.Context, item Item) error {
	if item.ID == 0 {
		return c.do(ctx, http.MethodPost, "/api/items", item, nil)
	}
	path := fmt.Sprintf("/api/items/%d", item.ID)
	return c.do(ctx, http.MethodPut, path, item, nil)
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/items/%d", id), nil, nil)
}

// Device is a registered fiscal device.
type Device struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Number      string `json:"number"`
	DeviceKey   string `json:"device_key,omitempty"`
	Status      string `json:"status"`
	Description string `json:"description"`
	LastSeen    string `json:"last_seen,omitempty"`
	LastIP      string `json:"last_ip,omitempty"`
	NewKey      bool   `json:"new_key,omitempty"`
}

// Devices lists the account's devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var out []Device
	if err := c.do(ctx, http.MethodGet, "/api/devices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveDevice creates the device when it has no ID, updates it otherwise.
func (c *Client) SaveDevice(ctx context.Context, device Device) error {
	if device.ID == 0 {
		return c.do(ctx, http.MethodPost, "/api/devices", device, nil)
	}
	path := fmt.Sprintf("/api/devices/%d", device.ID)
	return c.do(ctx, http.MethodPut, path, device, nil)
}

// DeleteDevice removes a device.
func (c *Client) DeleteDevice(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/devices/%d", id), nil, nil)
}

// Company is the business account's company record. An account has at most
// one.
type Company struct {
	ManagerName string `json:"manager_name"`
	Name        string `json:"name"`
	Number      string `json:"number,omitempty"`
	Address     string `json:"address"`
	LegalForm   string `json:"legal_form"`
}

// Company fetches the account's company record. Not having one is reported
// as an *Error with the backend's status.
func (c *Client) Company(ctx context.Context) (Company, error) {
	var out Company
	if err := c.do(ctx, http.MethodGet, "/api/company", nil, &out); err != nil {
		return Company{}, err
	}
	return out, nil
}

// SaveCompany updates the record when exists is true, creates it otherwise.
func (c *Client) SaveCompany(ctx context.Context, company Company, exists bool) (Company, error) {
	method := http.MethodPost
	if exists {
		method = http.MethodPut
	}
	var out Company
	if err := c.do(ctx, method, "/api/company", company, &out); err != nil {
		return Company{}, err
	}
	return out, nil
}

// DeleteCompany removes the company record.
func (c *Client) DeleteCompany(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/company", nil, nil)
}

// KeyUpdate carries whichever key fields the backend chose to return.
// Nil fields leave the session's values untouched.
type KeyUpdate struct {
	TransactionKey        *string `json:"transaction_key"`
	TransactionKeyEnabled *bool   `json:"transaction_key_enabled"`
	FiscalKey             *string `json:"fiscal_key"`
	FiscalKeyEnabled      *bool   `json:"fiscal_key_enabled"`
}

// KeyAction runs reset or toggle on the transaction or fiscal key.
func (c *Client) KeyAction(ctx context.Context, keyType, action string) (KeyUpdate, error) {
	path := "/api/keys/" + pathEscape(keyType) + "/" + pathEscape(action)
	var out KeyUpdate
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return KeyUpdate{}, err
	}
	return out, nil
}

// Merge applies the update onto a user record, overwriting only the fields
// the backend returned.
func (u KeyUpdate) Merge(user session.User) session.User {
	if u.TransactionKey != nil {
		user.TransactionKey = *u.TransactionKey
	}
	if u.TransactionKeyEnabled != nil {
		user.TransactionKeyEnabled = *u.TransactionKeyEnabled
	}
	if u.FiscalKey != nil {
		user.FiscalKey = *u.FiscalKey
	}
	if u.FiscalKeyEnabled != nil {
		user.FiscalKeyEnabled = *u.FiscalKeyEnabled
	}
	return user
}
