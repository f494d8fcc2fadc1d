package models

// ProductInfo est la projection "live" d'un produit jointe aux lignes de commande
type ProductInfo struct {
	ID           string  `json:"_id"`
	ProductName  string  `json:"productName"`
	ProductImage string  `json:"productImage,omitempty"`
	Price        float64 `json:"price"`
}
