package scylla

// CQL used by the driver. The schema itself lives in scripts/scylla_init.cql.
const (
	stmtListProducts = `SELECT product_id, name, description, price, category, image_url, created_at, user_id
		FROM products`
	stmtListProductsByCategory = `SELECT product_id, name, description, price, category, image_url, created_at, user_id
		FROM products WHERE category = ?`
	stmtGetProduct = `SELECT product_id, name, description, price, category, image_url, created_at, user_id
		FROM products WHERE product_id = ?`
	stmtInsertProduct = `INSERT INTO products (product_id, name, description, price, category, image_url, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmtDeleteProduct = `DELETE FROM products WHERE product_id = ?`

	stmtListCart       = `SELECT cart_item_id, product_id, quantity FROM cart_items WHERE user_id = ?`
	stmtGetCartItem    = `SELECT cart_item_id, product_id, quantity FROM cart_items WHERE user_id = ? AND cart_item_id = ?`
	stmtInsertCartItem = `INSERT INTO cart_items (user_id, cart_item_id, product_id, quantity) VALUES (?, ?, ?, ?)`
	stmtUpdateCartItem = `UPDATE cart_items SET quantity = ? WHERE user_id = ? AND cart_item_id = ? IF EXISTS`
	stmtDeleteCartItem = `DELETE FROM cart_items WHERE user_id = ? AND cart_item_id = ?`
	stmtProductSummary = `SELECT name, price, image_url FROM products WHERE product_id = ?`

	stmtGetProfile    = `SELECT profile_id, full_name, address, phone FROM profiles WHERE user_id = ?`
	stmtUpsertProfile = `INSERT INTO profiles (user_id, profile_id, full_name, address, phone) VALUES (?, ?, ?, ?, ?)`

	stmtClaimEmail  = `INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS`
	stmtInsertUser  = `INSERT INTO users (user_id, email, password, role, created_at) VALUES (?, ?, ?, ?, ?)`
	stmtGetUserByID = `SELECT email, password, role, created_at FROM users WHERE user_id = ?`
	stmtUserByEmail = `SELECT user_id FROM users_by_email WHERE email = ?`
	stmtUpdateRole  = `UPDATE users SET role = ? WHERE user_id = ? IF EXISTS`
)
