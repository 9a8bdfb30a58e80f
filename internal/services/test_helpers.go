package services

import (
	"storefront/internal/catalog"
	"storefront/internal/domain"
)

func CreateMockProduct(id int64, name string, price int64) domain.Product {
	return domain.Product{ID: id, Name: name, Price: price}
}

func CreateMockForm() domain.BuyerForm {
	return domain.BuyerForm{Name: TestBuyerName, Email: TestBuyerEmail, Address: TestBuyerAddress}
}

func CreateMockCatalog() *catalog.Catalog {
	c, _ := catalog.New([]domain.Product{
		CreateMockProduct(TestSweaterID, "Sweater NAREA", 27000),
		CreateMockProduct(TestConjuntoID, "Conjunto Otoñal", 32000),
		CreateMockProduct(TestAccesoriosID, "Accesorios", 5000),
	})
	return c
}

const (
	TestSessionID    = "session-1"
	TestSweaterID    = int64(1)
	TestConjuntoID   = int64(2)
	TestAccesoriosID = int64(3)
	TestBuyerName    = "Ana"
	TestBuyerEmail   = "ana@x.com"
	TestBuyerAddress = "Calle 1"
)
