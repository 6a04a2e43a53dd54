package dto

import "github.com/shopspring/decimal"

type DatosFiscales struct {
	RFC         string `json:"rfc"`
	RazonSocial string `json:"razon_social"`
	Domicilio   string `json:"domicilio"`
}

type CreateDonationRequest struct {
	IDUsuario     string           `json:"id_usuario"`
	Tipo          string           `json:"tipo"`
	Monto         *decimal.Decimal `json:"monto"`
	Moneda        string           `json:"moneda"`
	Descripcion   string           `json:"descripcion"`
	DatosFiscales *DatosFiscales   `json:"datos_fiscales,omitempty"`
	EvidenciaURL  string           `json:"evidencia_url,omitempty"`
}

type DonationResponse struct {
	IDDonacion    string           `json:"id_donacion"`
	IDUsuario     string           `json:"id_usuario"`
	Tipo          string           `json:"tipo"`
	Monto         *decimal.Decimal `json:"monto"`
	Moneda        string           `json:"moneda,omitempty"`
	Descripcion   string           `json:"descripcion"`
	DatosFiscales *DatosFiscales   `json:"datos_fiscales,omitempty"`
	EvidenciaURL  string           `json:"evidencia_url,omitempty"`
}

type CreateInvoiceRequest struct {
	IDDonacion string `json:"id_donacion"`
}

type InvoiceResponse struct {
	IDFactura  string          `json:"id_factura"`
	IDDonacion string          `json:"id_donacion"`
	RFC        string          `json:"rfc"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	IVA        decimal.Decimal `json:"iva"`
	Total      decimal.Decimal `json:"total"`
}

type CreateOrderRequest struct {
	IDDonacion string `json:"id_donacion"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
}

type CreateOrderResponse struct {
	IDPago     string `json:"id_pago"`
	OrderID    string `json:"order_id"`
	ApproveURL string `json:"approve_url,omitempty"`
	Estado     string `json:"estado"`
}

type CaptureRequest struct {
	OrderID string `json:"order_id"`
}

type PreferenceResponse struct {
	IDPago       string `json:"id_pago"`
	PreferenceID string `json:"preference_id"`
	InitPoint    string `json:"init_point,omitempty"`
	Estado       string `json:"estado"`
}

type PaymentStatusResponse struct {
	IDPago string `json:"id_pago"`
	Estado string `json:"estado"`
}

type MethodsResponse struct {
	Metodos []string `json:"metodos"`
}

type UploadedFile struct {
	Archivo        string `json:"archivo"` // generated name
	NombreOriginal string `json:"nombre_original"`
	Ruta           string `json:"ruta"`
	Tamano         int64  `json:"tamano"`
	URL            string `json:"url"`
}

type UploadResponse struct {
	Archivos     []UploadedFile `json:"archivos"`
	EvidenciaURL string         `json:"evidencia_url"`
}

type EvidenceListResponse struct {
	Archivos []UploadedFile `json:"archivos"`
}
