package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	receiptClassName      = "receipt_class_1"
	shoppingListClassName = "shopping_list_class_4"

	receiptBackground      = "#34A853"
	shoppingListBackground = "#4285F4"

	defaultLogoURI = "https://storage.googleapis.com/wallet-lab-tools-codelab-artifacts-public/pass_google_logo.jpg"
)

// ReceiptItem is one purchased line item on a receipt pass.
type ReceiptItem struct {
	Item     string `json:"item"`
	Quantity string `json:"qnty"`
	Price    string `json:"price"`
}

// ReceiptData is the input for a single receipt pass.
type ReceiptData struct {
	Category   string        `json:"category"`
	Date       string        `json:"date"`
	VendorName string        `json:"vendorName"`
	Items      []ReceiptItem `json:"items"`
	SortIndex  int           `json:"sortIndex"`
}

// ShoppingItem is one entry on a shopping-list pass.
type ShoppingItem struct {
	Item       string `json:"item"`
	Quantity   string `json:"quantity"`
	ApproxCost string `json:"approxCost"`
}

// ShoppingListData is the input for a single shopping-list pass, optionally
// carrying recipe metadata and step-by-step cooking instructions.
type ShoppingListData struct {
	TaskName            string         `json:"taskName"`
	Category            string         `json:"category"`
	Date                string         `json:"date"`
	Items               []ShoppingItem `json:"items"`
	CookingTime         string         `json:"cookingTime"`
	Servings            string         `json:"servings"`
	Difficulty          string         `json:"difficulty"`
	CookingInstructions []string       `json:"cookingInstructions"`
	CookingTips         []string       `json:"cookingTips"`
	SortIndex           int            `json:"sortIndex"`
}

// ReceiptClassTemplate sizes the shared receipt layout for maxItems rows.
func ReceiptClassTemplate(maxItems int) ClassTemplate {
	return ClassTemplate{RowCount: maxItems, Columns: [3]string{"item", "qnty", "price"}}
}

// ShoppingListClassTemplate sizes the shared shopping-list layout for maxItems rows.
func ShoppingListClassTemplate(maxItems int) ClassTemplate {
	return ClassTemplate{RowCount: maxItems, Columns: [3]string{"item", "quantity", "cost"}}
}

// Builder constructs pass objects for a wallet issuer.
type Builder struct {
	issuerID string
	logoURI  string
}

// NewBuilder creates a Builder for the given issuer id.
func NewBuilder(issuerID string) *Builder {
	return &Builder{issuerID: issuerID, logoURI: defaultLogoURI}
}

// ReceiptClassID returns the stable id of the shared receipt class.
func (b *Builder) ReceiptClassID() string {
	return b.issuerID + "." + receiptClassName
}

// ShoppingListClassID returns the stable id of the shared shopping-list class.
func (b *Builder) ShoppingListClassID() string {
	return b.issuerID + "." + shoppingListClassName
}

// BuildReceiptObject maps receipt data onto a pass object with positionally
// indexed text modules. Each call generates a fresh object id.
func (b *Builder) BuildReceiptObject(data ReceiptData, groupingID string, sortIndex int) PassObject {
	vendor := data.VendorName
	if vendor == "" {
		vendor = "Receipt Management"
	}
	category := data.Category
	if category == "" {
		category = "Receipt"
	}

	modules := make([]TextModule, 0, len(data.Items)*3)
	for idx, item := range data.Items {
		modules = append(modules,
			TextModule{ID: moduleID("item", idx), Body: item.Item},
			TextModule{ID: moduleID("qnty", idx), Body: item.Quantity},
			TextModule{ID: moduleID("price", idx), Body: item.Price},
		)
	}

	return PassObject{
		ID:              b.issuerID + ".receipt_" + uuid.New().String(),
		ClassID:         b.ReceiptClassID(),
		Title:           vendor,
		Subheader:       data.Date,
		Header:          category,
		BackgroundColor: receiptBackground,
		LogoURI:         b.logoURI,
		TextModules:     modules,
		GroupingID:      groupingID,
		SortIndex:       sortIndex,
	}
}

// BuildShoppingListObject maps shopping-list data onto a pass object. Items
// become positionally indexed modules on the front of the pass; recipe info
// and numbered instruction steps land in the details section.
func (b *Builder) BuildShoppingListObject(data ShoppingListData, groupingID string, sortIndex int) PassObject {
	taskName := data.TaskName
	if taskName == "" {
		taskName = "Shopping List"
	}
	category := data.Category
	if category == "" {
		category = "General"
	}
	modules := make([]TextModule, 0, len(data.Items)*3)
	for idx, item := range data.Items {
		quantity := item.Quantity
		if quantity == "" {
			quantity = "1"
		}
		cost := item.ApproxCost
		if cost == "" {
			cost = "₹0.00"
		}
		modules = append(modules,
			TextModule{ID: moduleID("item", idx), Body: item.Item},
			TextModule{ID: moduleID("quantity", idx), Body: quantity},
			TextModule{ID: moduleID("cost", idx), Body: cost},
		)
	}

	modules = append(modules, instructionModules(data)...)

	total := EstimatedTotal(data.Items)
	subheader := fmt.Sprintf("%s • Est. Total: ₹%.2f", category, total)

	return PassObject{
		ID:              b.issuerID + ".shopping_" + uuid.New().String(),
		ClassID:         b.ShoppingListClassID(),
		Title:           "Shopping List",
		Subheader:       subheader,
		Header:          taskName,
		BackgroundColor: shoppingListBackground,
		LogoURI:         b.logoURI,
		TextModules:     modules,
		GroupingID:      groupingID,
		SortIndex:       sortIndex,
	}
}

// instructionModules renders recipe metadata and cooking steps as extra text
// modules when instructions are present.
func instructionModules(data ShoppingListData) []TextModule {
	if len(data.CookingInstructions) == 0 {
		return nil
	}

	var modules []TextModule

	var info []string
	if data.CookingTime != "" {
		info = append(info, "⏱️ "+data.CookingTime)
	}
	if data.Servings != "" {
		info = append(info, "🍽️ Serves "+data.Servings)
	}
	if data.Difficulty != "" {
		info = append(info, "📊 "+data.Difficulty)
	}
	if len(info) > 0 {
		modules = append(modules, TextModule{
			ID:     "recipe_info",
			Header: "Recipe Info",
			Body:   strings.Join(info, " • "),
		})
	}

	modules = append(modules, TextModule{
		ID:     "instructions_header",
		Header: "Cooking Instructions",
		Body:   "Follow these steps to prepare your recipe:",
	})

	for idx, instruction := range data.CookingInstructions {
		modules = append(modules, TextModule{
			ID:     "instruction_" + strconv.Itoa(idx),
			Header: "Step " + strconv.Itoa(idx+1),
			Body:   strings.TrimSpace(instruction),
		})
	}

	if len(data.CookingTips) > 0 {
		lines := make([]string, 0, len(data.CookingTips))
		for _, tip := range data.CookingTips {
			lines = append(lines, "• "+tip)
		}
		modules = append(modules, TextModule{
			ID:     "cooking_tips",
			Header: "💡 Pro Tips",
			Body:   strings.Join(lines, "\n"),
		})
	}

	return modules
}

// EstimatedTotal sums the parseable item costs, skipping entries whose
// currency-prefixed value does not parse.
func EstimatedTotal(items []ShoppingItem) float64 {
	var total float64
	for _, item := range items {
		value, ok := parseCost(item.ApproxCost)
		if !ok {
			continue
		}
		total += value
	}
	return total
}

// parseCost strips a leading currency symbol and thousands separators from
// strings like "₹1,250.50" and parses the remainder.
func parseCost(cost string) (float64, bool) {
	trimmed := strings.TrimSpace(cost)
	trimmed = strings.TrimLeftFunc(trimmed, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.' && r != '-'
	})
	trimmed = strings.ReplaceAll(trimmed, ",", "")
	if trimmed == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
