package httpx

// CreateItemRequest mirrors the fields a creator submits when listing a
// new sellable item.
type CreateItemRequest struct {
	Title        string `json:"title"`
	Price        int64  `json:"price"`
	Description  string `json:"description"`
	ObjectURL    string `json:"objectUrl"`
	Image        string `json:"image"`
	SellableType string `json:"sellableType"`
}

// VerifyPaymentRequest is the gateway checkout callback payload. Field
// names follow the gateway's convention so the frontend can forward the
// callback body untouched.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type CreatePrintJobRequest struct {
	Title     string `json:"title"`
	Volume    int64  `json:"volume"`
	Quantity  int64  `json:"quantity"`
	ObjectURL string `json:"objectUrl"`
	Address   string `json:"address"`
}

type DueResponse struct {
	DueAmount int64 `json:"due_amount"`
}

type WithdrawResponse struct {
	PaidAmount int64 `json:"paid_amount"`
}

type VerifyPaymentResponse struct {
	Message   string `json:"message"`
	ReceiptID string `json:"receipt_id"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
