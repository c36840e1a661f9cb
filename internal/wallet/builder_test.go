package wallet

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestBuildReceiptObjectModuleIDs(t *testing.T) {
	builder := NewBuilder("3388000000022968451")
	data := ReceiptData{
		Category:   "Food & Dining",
		Date:       "2025-07-26",
		VendorName: "Corner Store",
		Items: []ReceiptItem{
			{Item: "Pizza", Quantity: "1", Price: "₹150.00"},
			{Item: "Cola", Quantity: "2", Price: "₹40.00"},
		},
	}

	obj := builder.BuildReceiptObject(data, "food_group_1", 1)

	if obj.ClassID != "3388000000022968451.receipt_class_1" {
		t.Fatalf("unexpected class id %q", obj.ClassID)
	}
	if !strings.HasPrefix(obj.ID, "3388000000022968451.receipt_") {
		t.Fatalf("unexpected object id %q", obj.ID)
	}
	if obj.Title != "Corner Store" || obj.Header != "Food & Dining" || obj.Subheader != "2025-07-26" {
		t.Fatalf("unexpected display fields: %+v", obj)
	}

	wantIDs := []string{"item_0", "qnty_0", "price_0", "item_1", "qnty_1", "price_1"}
	if len(obj.TextModules) != len(wantIDs) {
		t.Fatalf("expected %d modules, got %d", len(wantIDs), len(obj.TextModules))
	}
	for i, want := range wantIDs {
		if obj.TextModules[i].ID != want {
			t.Fatalf("module %d: expected id %q, got %q", i, want, obj.TextModules[i].ID)
		}
	}
	if obj.TextModules[3].Body != "Cola" {
		t.Fatalf("expected item_1 body Cola, got %q", obj.TextModules[3].Body)
	}
}

func TestBuildReceiptObjectDefaults(t *testing.T) {
	builder := NewBuilder("issuer")

	obj := builder.BuildReceiptObject(ReceiptData{}, "group", 3)

	if obj.Title != "Receipt Management" {
		t.Fatalf("expected default vendor title, got %q", obj.Title)
	}
	if obj.Header != "Receipt" {
		t.Fatalf("expected default category, got %q", obj.Header)
	}
	if obj.SortIndex != 3 {
		t.Fatalf("expected sort index 3, got %d", obj.SortIndex)
	}
}

func TestBuildReceiptObjectIDsAreFreshPerCall(t *testing.T) {
	builder := NewBuilder("issuer")
	data := ReceiptData{Items: []ReceiptItem{{Item: "Tea"}}}

	first := builder.BuildReceiptObject(data, "g", 1)
	second := builder.BuildReceiptObject(data, "g", 1)

	if first.ID == second.ID {
		t.Fatal("expected unique object ids per creation")
	}
}

func TestBuildShoppingListObjectComputesTotal(t *testing.T) {
	builder := NewBuilder("issuer")
	data := ShoppingListData{
		TaskName: "Baking a Cake",
		Category: "Baking & Desserts",
		Items: []ShoppingItem{
			{Item: "All-purpose flour", Quantity: "2 cups", ApproxCost: "₹35.00"},
			{Item: "Sugar", Quantity: "1.5 cups", ApproxCost: "₹22.50"},
		},
	}

	obj := builder.BuildShoppingListObject(data, "baking_group_1", 1)

	if !strings.Contains(obj.Subheader, "Est. Total: ₹57.50") {
		t.Fatalf("expected total ₹57.50 in subheader, got %q", obj.Subheader)
	}
	if obj.Header != "Baking a Cake" {
		t.Fatalf("expected task name header, got %q", obj.Header)
	}

	wantIDs := []string{"item_0", "quantity_0", "cost_0", "item_1", "quantity_1", "cost_1"}
	for i, want := range wantIDs {
		if obj.TextModules[i].ID != want {
			t.Fatalf("module %d: expected id %q, got %q", i, want, obj.TextModules[i].ID)
		}
	}
}

func TestEstimatedTotalSkipsUnparseableCosts(t *testing.T) {
	items := []ShoppingItem{
		{ApproxCost: "₹35.00"},
		{ApproxCost: "invalid"},
		{ApproxCost: "₹22.50"},
	}

	total := EstimatedTotal(items)
	if math.Abs(total-57.50) > 1e-9 {
		t.Fatalf("expected total 57.50, got %v", total)
	}
}

func TestEstimatedTotalHandlesThousandsSeparators(t *testing.T) {
	total := EstimatedTotal([]ShoppingItem{{ApproxCost: "₹1,250.50"}})
	if math.Abs(total-1250.50) > 1e-9 {
		t.Fatalf("expected total 1250.50, got %v", total)
	}
}

func TestBuildShoppingListObjectInstructionModules(t *testing.T) {
	builder := NewBuilder("issuer")
	data := ShoppingListData{
		TaskName:    "Cookies",
		CookingTime: "25 mins",
		Servings:    "24 cookies",
		Difficulty:  "Easy",
		Items:       []ShoppingItem{{Item: "Flour", ApproxCost: "₹35.00"}},
		CookingInstructions: []string{
			"Preheat oven to 375°F",
			"  Mix dry ingredients  ",
		},
		CookingTips: []string{"Use room temperature butter"},
	}

	obj := builder.BuildShoppingListObject(data, "g", 1)

	byID := make(map[string]TextModule, len(obj.TextModules))
	for _, m := range obj.TextModules {
		byID[m.ID] = m
	}

	info, ok := byID["recipe_info"]
	if !ok {
		t.Fatal("expected recipe_info module")
	}
	if !strings.Contains(info.Body, "Serves 24 cookies") {
		t.Fatalf("unexpected recipe info body %q", info.Body)
	}

	if _, ok := byID["instructions_header"]; !ok {
		t.Fatal("expected instructions_header module")
	}

	step2, ok := byID["instruction_1"]
	if !ok {
		t.Fatal("expected instruction_1 module")
	}
	if step2.Header != "Step 2" {
		t.Fatalf("expected header Step 2, got %q", step2.Header)
	}
	if step2.Body != "Mix dry ingredients" {
		t.Fatalf("expected trimmed instruction body, got %q", step2.Body)
	}

	tips, ok := byID["cooking_tips"]
	if !ok {
		t.Fatal("expected cooking_tips module")
	}
	if !strings.HasPrefix(tips.Body, "• ") {
		t.Fatalf("expected bulleted tips, got %q", tips.Body)
	}
}

func TestBuildShoppingListObjectWithoutInstructions(t *testing.T) {
	builder := NewBuilder("issuer")
	data := ShoppingListData{Items: []ShoppingItem{{Item: "Milk"}}}

	obj := builder.BuildShoppingListObject(data, "g", 1)

	for _, m := range obj.TextModules {
		if m.ID == "instructions_header" || m.ID == "recipe_info" {
			t.Fatalf("unexpected module %q without instructions", m.ID)
		}
	}
}

func TestClassTemplateSerialization(t *testing.T) {
	template := ReceiptClassTemplate(2)
	class := template.toGenericClass("issuer.receipt_class_1")

	data, err := json.Marshal(class)
	if err != nil {
		t.Fatalf("failed to marshal class: %v", err)
	}

	payload := string(data)
	for _, want := range []string{
		`"id":"issuer.receipt_class_1"`,
		`object.textModulesData['item_0']`,
		`object.textModulesData['qnty_1']`,
		`object.textModulesData['price_1']`,
		`"cardRowTemplateInfos"`,
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected %q in class payload:\n%s", want, payload)
		}
	}

	if got := len(class.ClassTemplateInfo.CardTemplateOverride.CardRowTemplateInfos); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
}

func TestPassObjectSerialization(t *testing.T) {
	obj := PassObject{
		ID:              "issuer.receipt_abc",
		ClassID:         "issuer.receipt_class_1",
		Title:           "Vendor",
		Subheader:       "2025-07-26",
		Header:          "Food",
		BackgroundColor: "#34A853",
		LogoURI:         "https://example.com/logo.jpg",
		TextModules:     []TextModule{{ID: "item_0", Body: "Pizza"}},
		GroupingID:      "food_group_1",
		SortIndex:       2,
	}

	data, err := json.Marshal(obj.toGenericObject())
	if err != nil {
		t.Fatalf("failed to marshal object: %v", err)
	}

	payload := string(data)
	for _, want := range []string{
		`"genericType":"GENERIC_TYPE_UNSPECIFIED"`,
		`"hexBackgroundColor":"#34A853"`,
		`"groupingId":"food_group_1"`,
		`"sortIndex":2`,
		`"language":"en"`,
		`"sourceUri"`,
	} {
		if !strings.Contains(payload, want) {
			t.Fatalf("expected %q in object payload:\n%s", want, payload)
		}
	}
}
