package recovery_test

const strictResponse = `{
  "test_cases": [
    {
      "Test_ID": "TC-001",
      "Feature": "Discount Codes",
      "Test_Scenario": "Apply SAVE15 to a cart",
      "Expected_Result": "Total is reduced by 15%",
      "Triggering_Rule": "SAVE15 gives 15% off",
      "Grounded_In": "product_specs.md"
    },
    {
      "Test_ID": "TC-002",
      "Feature": "Shipping",
      "Test_Scenario": "Order above $50",
      "Expected_Result": "Shipping is free",
      "Triggering_Rule": "Free shipping over $50",
      "Grounded_In": "product_specs.md"
    }
  ]
}`

// The second record is missing a comma between two members.
const partiallyCorruptResponse = `Sure! Here are the test cases:
{"test_cases": [
  {"Test_ID": "TC-001", "Feature": "Discount Codes", "Test_Scenario": "Apply SAVE15", "Expected_Result": "15% off", "Triggering_Rule": "SAVE15 gives 15% off", "Grounded_In": "product_specs.md"},
  {"Test_ID": "TC-002", "Feature": "Shipping" "Test_Scenario": "Order above $50", "Expected_Result": "Free shipping", "Triggering_Rule": "over $50", "Grounded_In": "product_specs.md"}
]}`

const proseResponse = `I could not format this as JSON, sorry.

Test_ID: TC-010
Feature: Discount Codes
Test_Scenario: Apply SAVE15 to a cart
Expected_Result: Total drops by 15%

Test_ID: TC-011
Feature: Shipping
Grounded_In: product_specs.md
`
