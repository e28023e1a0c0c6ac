package mpesa

import (
	"encoding/json"
	"fmt"
)

// CallbackResult is the parsed outcome of an STK push callback.
type CallbackResult struct {
	CheckoutRequestID string
	ResultCode        int
	ResultDesc        string
	Receipt           string
	Amount            float64
	PhoneNumber       string
}

// Success reports whether the customer completed the payment.
func (r *CallbackResult) Success() bool {
	return r.ResultCode == 0
}

// stkCallbackEnvelope mirrors the Daraja callback payload:
//
//	{"Body": {"stkCallback": {"ResultCode": 0, "CheckoutRequestID": "...",
//	  "CallbackMetadata": {"Item": [{"Name": "MpesaReceiptNumber", "Value": "..."}]}}}}
type stkCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string      `json:"Name"`
					Value interface{} `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

// ParseCallback decodes an STK push callback body.
func ParseCallback(body []byte) (*CallbackResult, error) {
	var envelope stkCallbackEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding callback: %w", err)
	}

	cb := envelope.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		return nil, fmt.Errorf("callback missing CheckoutRequestID")
	}

	result := &CallbackResult{
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
	}

	for _, item := range cb.CallbackMetadata.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				result.Receipt = s
			}
		case "Amount":
			if f, ok := item.Value.(float64); ok {
				result.Amount = f
			}
		case "PhoneNumber":
			// Daraja sends the MSISDN as a number.
			if f, ok := item.Value.(float64); ok {
				result.PhoneNumber = fmt.Sprintf("%.0f", f)
			}
		}
	}

	return result, nil
}
