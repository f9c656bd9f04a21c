package book

import (
	"time"
)

// Book 图书实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"分"为单位(避免浮点数精度问题)
// 2. ISBN作为业务唯一标识(数据库层保证唯一性)
// 3. 库存的增减不在实体上做:确认购买必须用Repository的
//    原子UpdateStock,实体内存字段的增减挡不住并发
type Book struct {
	ID          uint
	ISBN        string // ISBN号(国际标准书号)
	Title       string // 书名
	Author      string // 作者
	Publisher   string // 出版社
	Price       int64  // 价格(单位:分,1元=100分)
	Stock       int    // 库存数量
	CoverURL    string // 封面图片URL
	Description string // 图书描述
	PublisherID uint   // 发布者用户ID(关联User表)
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewBook 创建新图书(工厂方法)
// ISBN与价格的合法性由领域服务先行校验
func NewBook(isbn, title, author, publisher string, price int64, stock int, coverURL, description string, publisherID uint) *Book {
	now := time.Now()
	return &Book{
		ISBN:        isbn,
		Title:       title,
		Author:      author,
		Publisher:   publisher,
		Price:       price,
		Stock:       stock,
		CoverURL:    coverURL,
		Description: description,
		PublisherID: publisherID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasStock 判断库存是否足够购买指定数量
// 只用于购物车展示的预检,权威校验在确认购买的锁定读里
func (b *Book) HasStock(quantity int) bool {
	return b.Stock >= quantity
}
