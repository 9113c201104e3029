package models

import "time"

// PriceInfo цена товара или услуги: фиксированная либо диапазон
type PriceInfo struct {
	FixPrice  *float64 `json:"fix_price,omitempty"`
	FromPrice *float64 `json:"from_price,omitempty"`
	ToPrice   *float64 `json:"to_price,omitempty"`
	Currency  string   `json:"currency"`
}

// LocationInfo местоположение товара
type LocationInfo struct {
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

// ItemSummary краткая информация о товаре/услуге в составе заказа
type ItemSummary struct {
	ID         int64        `json:"id"`
	Title      string       `json:"title"`
	Status     string       `json:"status"`
	Price      PriceInfo    `json:"price"`
	Location   LocationInfo `json:"location"`
	Photos     []string     `json:"photos"`
	DateCreate time.Time    `json:"date_create"`
}

// RequestSummary краткая информация о запросе покупателя в составе заказа
type RequestSummary struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	DateCreate time.Time `json:"date_create"`
}
