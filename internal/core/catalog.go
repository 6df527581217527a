package core

import (
	"github.com/shopspring/decimal"
)

// Catalog seed for the demo restaurant. Every function returns a fresh slice
// so generator runs never share backing arrays.

func seedProductCategories() []ProductCategory {
	return []ProductCategory{
		{ID: "ic_1", Name: "Starters", Description: "Appetizers and snacks"},
		{ID: "ic_2", Name: "Curries", Description: "Main course gravies"},
		{ID: "ic_3", Name: "Breads", Description: "Naan, Roti, Paratha"},
		{ID: "ic_4", Name: "Rice", Description: "Biryani and Basmati"},
		{ID: "ic_5", Name: "Beverages", Description: "Lassi and Soft Drinks"},
		{ID: "ic_6", Name: "Desserts", Description: "Sweets"},
	}
}

func product(id, name, desc, categoryID, sku, uom, price, cost string) Product {
	return Product{
		ID:            id,
		Name:          name,
		Description:   desc,
		CategoryID:    categoryID,
		SKU:           sku,
		UnitOfMeasure: uom,
		UnitPrice:     decimal.RequireFromString(price),
		UnitCost:      decimal.RequireFromString(cost),
		IsActive:      true,
	}
}

func seedProducts() []Product {
	return []Product{
		product("ip_1", "Butter Chicken", "Creamy tomato curry", "ic_2", "CUR-001", "dish", "18.00", "6.50"),
		product("ip_2", "Garlic Naan", "Leavened bread with garlic", "ic_3", "BRD-005", "piece", "4.00", "0.80"),
		product("ip_3", "Veg Samosa (2pc)", "Crispy pastry", "ic_1", "STR-002", "plate", "6.00", "1.50"),
		product("ip_4", "Lamb Vindaloo", "Spicy Goan curry", "ic_2", "CUR-008", "dish", "20.00", "8.00"),
		product("ip_5", "Mango Lassi", "Yogurt drink", "ic_5", "BEV-003", "glass", "5.00", "1.20"),
		product("ip_6", "Paneer Tikka Masala", "Cottage cheese curry", "ic_2", "CUR-004", "dish", "16.00", "5.50"),
		product("ip_7", "Chicken Biryani", "Spiced rice with chicken", "ic_4", "RIC-001", "plate", "15.00", "5.00"),
		product("ip_8", "Tandoori Roti", "Whole wheat bread", "ic_3", "BRD-001", "piece", "3.00", "0.50"),
		product("ip_9", "Gulab Jamun", "Milk solids in syrup", "ic_6", "DST-001", "portion", "6.00", "1.50"),
		product("ip_10", "Masala Chai", "Spiced tea", "ic_5", "BEV-001", "cup", "4.00", "0.50"),
		product("ip_11", "Onion Bhaji", "Fried onion fritters", "ic_1", "STR-003", "plate", "7.00", "1.80"),
		product("ip_12", "Palak Paneer", "Spinach and cheese curry", "ic_2", "CUR-005", "dish", "15.00", "4.50"),
	}
}

func seedCustomers() []Customer {
	return []Customer{
		{ID: "cu_1", Name: "Priya Sharma", Email: "priya@example.com", Phone: "555-1234", Address: "15 Maple Ave", City: "Metro City", State: "NY", PostalCode: "10001",
			FirstPurchaseDate: MustParseDate("2023-05-10"), LastPurchaseDate: MustParseDate("2023-10-08"), Type: CustomerVIP},
		{ID: "cu_2", Name: "John Smith", Email: "john@example.com", Phone: "555-5678", Address: "42 Broadway", City: "Metro City", State: "NY", PostalCode: "10002",
			FirstPurchaseDate: MustParseDate("2023-08-20"), LastPurchaseDate: MustParseDate("2023-09-15"), Type: CustomerRetail},
		{ID: "cu_3", Name: "Anita Desai", Email: "anita@example.com", Phone: "555-9988", Address: "77 Oak Ln", City: "Metro City", State: "NY", PostalCode: "10003",
			FirstPurchaseDate: MustParseDate("2023-09-01"), LastPurchaseDate: MustParseDate("2023-10-01"), Type: CustomerVIP},
		{ID: "cu_4", Name: "Raj Patel", Email: "raj.p@example.com", Phone: "555-7777", Address: "12 River Rd", City: "Metro City", State: "NY", PostalCode: "10004",
			FirstPurchaseDate: MustParseDate("2023-10-01"), LastPurchaseDate: MustParseDate("2023-10-01"), Type: CustomerRetail},
		{ID: "cu_5", Name: "Sarah Connor", Email: "sarah@example.com", Phone: "555-2020", Address: "Cyberdyne Sys", City: "Metro City", State: "NY", PostalCode: "10005",
			FirstPurchaseDate: MustParseDate("2023-09-15"), LastPurchaseDate: MustParseDate("2023-10-05"), Type: CustomerWholesale},
	}
}

// Expense category ids referenced by the generator's emission rules.
const (
	ExpenseCategoryFoodCost  = "iec_1"
	ExpenseCategoryLabor     = "iec_2"
	ExpenseCategoryRent      = "iec_3"
	ExpenseCategoryUtilities = "iec_4"
	ExpenseCategoryMarketing = "iec_5"
)

func seedExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		{ID: ExpenseCategoryFoodCost, Name: "Food Cost", Description: "Ingredients"},
		{ID: ExpenseCategoryLabor, Name: "Labor", Description: "Staff Salaries"},
		{ID: ExpenseCategoryRent, Name: "Rent", Description: "Facility Lease"},
		{ID: ExpenseCategoryUtilities, Name: "Utilities", Description: "Gas/Electric"},
		{ID: ExpenseCategoryMarketing, Name: "Marketing", Description: "Ads"},
	}
}
