package ai

import (
	"fmt"
	"strings"
)

const systemPrompt = `你是一名关注国内黄金市场的分析师，读者是持有实物金和积存金的普通投资者。
根据给出的参考金价和最新新闻标题，用简体中文写一段不超过200字的市场简评。

要求：
1. 先概括当前金价水平，如果价格来源标注为 stale 或 synthetic，要提醒读者价格可能不是实时行情。
2. 结合新闻说明影响金价的主要因素。
3. 不给出具体买卖建议，不预测具体点位。
4. 只输出正文，不要标题，不要 Markdown。`

const maxHeadlines = 8

func BuildUserPrompt(req *BriefRequest) string {
	var sb strings.Builder

	sb.WriteString("## 参考金价\n")
	sb.WriteString(fmt.Sprintf("%s 元/克，来源 %s，时间 %s\n\n",
		req.Price.AmountPerGram.StringFixed(2),
		req.Price.SourceLabel(),
		req.Price.ObservedAt.Format("2006-01-02 15:04")))

	sb.WriteString("## 最新新闻\n")
	if len(req.Headlines) == 0 {
		sb.WriteString("暂无相关新闻。\n")
	}
	for i, n := range req.Headlines {
		if i == maxHeadlines {
			break
		}
		sb.WriteString(fmt.Sprintf("- %s（%s）\n", n.Title, n.Source))
	}

	sb.WriteString("\n请写出今日金价简评。")

	return sb.String()
}
