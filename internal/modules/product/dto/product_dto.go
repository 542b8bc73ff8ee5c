package dto

type ProductRequest struct {
	Name  string `json:"name" form:"name" binding:"required,max=150"`
	Price int    `json:"price" form:"price" binding:"required,gt=0"`
	Stock int    `json:"stock" form:"stock" binding:"gte=0"`
}
